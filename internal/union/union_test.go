package union

import (
	"testing"

	"github.com/dekarrin/prins/internal/automaton"
	"github.com/stretchr/testify/assert"
)

func oneStateLoop(tid string, accepting bool) *automaton.NFA {
	n := automaton.New()
	n.AddState("0", accepting)
	n.Start = "0"
	n.AddTransition("0", automaton.Symbol{TID: tid}, "0")
	return n
}

func Test_Union_mergesInitialStatesAndUnionsAlphabets(t *testing.T) {
	m1 := oneStateLoop("a", true)
	m2 := oneStateLoop("b", true)

	sys, err := Union([]*automaton.NFA{m1, m2})
	assert.NoError(t, err)

	assert.Equal(t, 1, sys.Q.Len(), "both single-state automata's starts should have merged into one state")
	assert.Equal(t, 2, sys.Sigma.Len())

	ok, err := sys.AcceptsNFA([]automaton.Entry{{TID: "a"}})
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = sys.AcceptsNFA([]automaton.Entry{{TID: "b"}})
	assert.NoError(t, err)
	assert.True(t, ok)
}

func Test_Union_singleAutomatonIsCompacted(t *testing.T) {
	m1 := oneStateLoop("a", true)

	sys, err := Union([]*automaton.NFA{m1})
	assert.NoError(t, err)
	assert.Equal(t, automaton.State("0"), sys.Start)
}

func Test_Union_requiresAtLeastOne(t *testing.T) {
	_, err := Union(nil)
	assert.Error(t, err)
}
