package complearner

import (
	"context"
	"testing"

	"github.com/dekarrin/prins/internal/automaton"
	"github.com/stretchr/testify/assert"
)

func Test_EncodeWireFormat(t *testing.T) {
	sub := SubLog{
		"2": {{TID: "login", Values: []string{"bob"}}},
		"1": {{TID: "login", Values: []string{"ann a"}}, {TID: "logout"}},
	}

	out := EncodeWireFormat(sub, false)

	assert.Contains(t, out, "types\n")
	assert.Contains(t, out, "login var0:S")
	assert.Contains(t, out, "logout")
	assert.Contains(t, out, "__END__")
	// exec "1" must be encoded before "2" (natural order)
	idx1 := indexOf(out, "login anna")
	idx2 := indexOf(out, "login bob")
	assert.True(t, idx1 < idx2 && idx1 >= 0 && idx2 >= 0)
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func Test_EncodeWireFormat_ignoreValues(t *testing.T) {
	sub := SubLog{"1": {{TID: "login", Values: []string{"bob"}}}}
	out := EncodeWireFormat(sub, true)
	assert.NotContains(t, out, "bob")
	assert.Contains(t, out, "login\n")
}

func Test_DecodeDotLike_splitsCompoundLabelsAndDropsSentinel(t *testing.T) {
	dot := `digraph Automaton {
0 [label="0",shape=doublecircle];
1 [label="1"];
2 [label="2"];
initial -> 0;
0 -> 1 [label="a\nvar0=='1'"];
0 -> 2 [label="a\nvar0!='1'"];
1 -> 0 [label="b"];
2 -> 0 [label="c"];
0 -> 3 [label="__END__"];
}`

	n, err := DecodeDotLike(dot)
	assert.NoError(t, err)

	assert.True(t, n.F.Has("0"))
	assert.False(t, n.Q.Has("3"))

	ok, err := n.AcceptsNFA([]automaton.Entry{{TID: "a", Values: []string{"1"}}, {TID: "b"}})
	assert.NoError(t, err)
	assert.True(t, ok)
}

func Test_FakeLearner_Infer(t *testing.T) {
	model := automaton.New()
	model.AddState("0", true)
	model.Start = "0"
	model.AddTransition("0", automaton.Symbol{TID: "x"}, "0")

	fl := &FakeLearner{Models: map[string]*automaton.NFA{"comp1": model}}

	got, err := fl.Infer(context.Background(), "comp1", SubLog{}, Options{})
	assert.NoError(t, err)
	assert.True(t, got.F.Has("0"))

	_, err = fl.Infer(context.Background(), "unknown", SubLog{}, Options{})
	assert.Error(t, err)
}
