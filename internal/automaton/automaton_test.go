package automaton

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildS1DFA constructs the DFA from spec.md §8 scenario S1.
func buildS1DFA(t *testing.T) *DFA {
	t.Helper()
	d := NewDFA()
	d.AddState("s0", true)
	d.AddState("s1", false)
	d.AddState("s2", false)
	d.Start = "s0"

	aEq1 := Symbol{TID: "a", Guard: `var0=="1"`}
	aNeq1 := Symbol{TID: "a", Guard: `var0!="1"`}
	b := Symbol{TID: "b"}
	c := Symbol{TID: "c"}

	d.AddTransition("s0", aEq1, "s1")
	d.AddTransition("s0", aNeq1, "s2")
	d.AddTransition("s1", b, "s0")
	d.AddTransition("s2", c, "s0")
	d.AddTransition("s1", c, "s1")

	return d
}

func Test_S1_DFAAcceptanceWithGuards(t *testing.T) {
	d := buildS1DFA(t)

	ok, err := d.AcceptsDFA([]Entry{{TID: "a", Values: []string{"1"}}, {TID: "b"}})
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.AcceptsDFA([]Entry{{TID: "a", Values: []string{"2"}}, {TID: "c"}})
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.AcceptsDFA([]Entry{{TID: "a", Values: []string{"2"}}})
	assert.NoError(t, err)
	assert.False(t, ok)
}

func toNFA(d *DFA) *NFA {
	n := New()
	for sym := range d.Sigma {
		n.Sigma.Add(sym)
	}
	for _, s := range d.Q.Elements() {
		n.AddState(s, d.F.Has(s))
	}
	n.Start = d.Start
	for from, row := range d.Delta {
		for sym, to := range row {
			n.AddTransition(from, sym, to)
		}
	}
	return n
}

func Test_S2_MergeStatesCanonicalNaming(t *testing.T) {
	d := buildS1DFA(t)
	n := toNFA(d)

	qm, err := n.MergeStates(newStateSet("s1", "s2"))
	assert.NoError(t, err)
	assert.Equal(t, State("s1,s2"), qm)

	qm2, err := n.MergeStates(newStateSet("s0", qm))
	assert.NoError(t, err)
	assert.Equal(t, State("s0,s1,s2"), qm2)
}

func Test_MergeStates_decreasesStateCountAndRemapsTransitions(t *testing.T) {
	d := buildS1DFA(t)
	n := toNFA(d)

	before := n.Q.Len()
	qm, err := n.MergeStates(newStateSet("s1", "s2"))
	assert.NoError(t, err)
	assert.Equal(t, before-1, n.Q.Len())

	// every transition previously incident to s1 or s2 is now incident to qm
	for from, row := range n.Delta {
		for sym, to := range row {
			for _, s := range to.Elements() {
				assert.NotEqual(t, State("s1"), s)
				assert.NotEqual(t, State("s2"), s)
			}
			_ = sym
			assert.NotEqual(t, State("s1"), from)
			assert.NotEqual(t, State("s2"), from)
		}
	}
	assert.True(t, n.Q.Has(qm))
}

func Test_RenameStates_preservesCountsAndNaming(t *testing.T) {
	d := buildS1DFA(t)
	n := toNFA(d)

	qCount, sigCount, fCount := n.Q.Len(), n.Sigma.Len(), n.F.Len()
	var deltaCount int
	for _, row := range n.Delta {
		for _, to := range row {
			deltaCount += to.Len()
		}
	}

	n.RenameStates(5)

	assert.Equal(t, qCount, n.Q.Len())
	assert.Equal(t, sigCount, n.Sigma.Len())
	assert.Equal(t, fCount, n.F.Len())

	var newDeltaCount int
	for _, row := range n.Delta {
		for _, to := range row {
			newDeltaCount += to.Len()
		}
	}
	assert.Equal(t, deltaCount, newDeltaCount)

	for _, s := range n.Q.Elements() {
		v, err := strconv.Atoi(string(s))
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, v, 5)
	}
}

func Test_S3_Append(t *testing.T) {
	d := buildS1DFA(t)
	n := toNFA(d)
	n.RenameStates(0) // s0,s1,s2 -> 0,1,2 in natural order

	other := New()
	other.AddState("0", true)
	other.Start = "0"
	a := Symbol{TID: "a"}
	other.AddTransition("0", a, "0")

	err := n.Append(other)
	assert.NoError(t, err)

	// sole prior accepting state (0) merged with other's start (renamed to 3)
	assert.True(t, n.Q.Has("0,3"))
	assert.True(t, n.F.Has("0,3"))

	// the combined state carries both original outgoing transitions and the
	// self-loop from the appended automaton
	row := n.Delta["0,3"]
	found := map[string]bool{}
	for sym := range row {
		found[sym.String()] = true
	}
	assert.True(t, found["a"], "expected the appended self-loop on a to survive")
}

func Test_Append_paddingAccountsForEveryEmbeddedLeafNumber(t *testing.T) {
	// n's sole accepting state is a composite state whose highest embedded
	// leaf number (5) is not its first comma-joined segment (0); a padding
	// computation that only looks at the first segment of each label would
	// under-count and collide with leaf 5 instead of padding past it.
	n := New()
	n.AddState("0,5", true)
	n.SetLeaves("0,5", []State{"0", "5"})
	n.Start = "0,5"

	other := New()
	other.AddState("0", true)
	other.Start = "0"

	err := n.Append(other)
	assert.NoError(t, err)

	assert.True(t, n.Q.Has("0,5,6"), "expected other's sole state to be renamed past leaf 5 (to 6), got states %v", n.Q.Elements())
	assert.False(t, n.Q.Has("0,1,5"), "padding must account for every embedded leaf number, not just each label's first segment")
}

func Test_FindNonDeterministicState(t *testing.T) {
	n := New()
	n.AddState("s0", false)
	n.AddState("s1", false)
	n.AddState("s2", false)
	n.AddState("s3", true)
	n.Start = "s0"

	a := Symbol{TID: "a"}
	b := Symbol{TID: "b"}

	n.AddTransition("s0", a, "s1")
	n.AddTransition("s0", a, "s2")
	n.AddTransition("s1", b, "s3")

	nd, err := n.FindNonDeterministicState(nil)
	assert.NoError(t, err)
	assert.NotNil(t, nd)
	assert.True(t, nd.Has("s1"))
	assert.True(t, nd.Has("s2"))
}

func Test_FindNonDeterministicState_deterministicReturnsNil(t *testing.T) {
	d := buildS1DFA(t)
	n := toNFA(d)

	nd, err := n.FindNonDeterministicState(nil)
	assert.NoError(t, err)
	assert.Nil(t, nd)
}

func Test_Copy_isIndependent(t *testing.T) {
	d := buildS1DFA(t)
	n := toNFA(d)

	cp := n.Copy()
	_, err := cp.MergeStates(newStateSet("s1", "s2"))
	assert.NoError(t, err)

	assert.True(t, n.Q.Has("s1"))
	assert.True(t, n.Q.Has("s2"))
	assert.False(t, cp.Q.Has("s1"))
}

func Test_EmptyTrace_acceptedIffStartIsAccepting(t *testing.T) {
	d := buildS1DFA(t)
	ok, err := d.AcceptsDFA(nil)
	assert.NoError(t, err)
	assert.True(t, ok, "s0 is accepting, so the empty trace must be accepted")

	d2 := NewDFA()
	d2.AddState("q0", false)
	d2.Start = "q0"
	ok, err = d2.AcceptsDFA(nil)
	assert.NoError(t, err)
	assert.False(t, ok)
}
