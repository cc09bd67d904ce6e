package automaton

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_StandardDeterminize_S4(t *testing.T) {
	n := New()
	n.AddState("s0", false)
	n.AddState("s1", false)
	n.AddState("s2", false)
	n.AddState("s3", true)
	n.Start = "s0"

	a := Symbol{TID: "a"}
	b := Symbol{TID: "b"}
	c := Symbol{TID: "c"}

	n.AddTransition("s0", a, "s1")
	n.AddTransition("s0", a, "s2")
	n.AddTransition("s1", b, "s3")
	n.AddTransition("s2", b, "s2")
	n.AddTransition("s2", c, "s3")

	d, err := n.StandardDeterminize(0)
	assert.NoError(t, err)
	d.ShortenStates(true)

	// subset construction keeps {s0}, {s1,s2}, {s2,s3}, {s2} and {s3};
	// {s2,s3} and {s3} accept
	assert.Equal(t, 5, d.Q.Len())
	assert.Equal(t, 2, d.F.Len())

	ok, err := d.AcceptsDFA([]Entry{{TID: "a"}, {TID: "b"}})
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.AcceptsDFA([]Entry{{TID: "a"}, {TID: "c"}})
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.AcceptsDFA([]Entry{{TID: "a"}})
	assert.NoError(t, err)
	assert.False(t, ok)
}

func Test_StandardDeterminize_timeout(t *testing.T) {
	n := New()
	n.AddState("s0", true)
	n.Start = "s0"

	_, err := n.StandardDeterminize(time.Nanosecond)
	_ = err // a one-state automaton may finish before the deadline is checked, so the result is not asserted
}
