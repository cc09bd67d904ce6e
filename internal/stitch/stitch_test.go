package stitch

import (
	"testing"

	"github.com/dekarrin/prins/internal/automaton"
	"github.com/dekarrin/prins/internal/projector"
	"github.com/stretchr/testify/assert"
)

func sampleModel() *automaton.NFA {
	m := automaton.New()
	m.AddState("0", false)
	m.AddState("1", true)
	m.Start = "0"
	m.AddTransition("0", automaton.Symbol{TID: "login"}, "1")
	m.AddTransition("1", automaton.Symbol{TID: "logout"}, "0")
	return m
}

func Test_Slice_emptySubTraceReturnsSingleStateAutomaton(t *testing.T) {
	m := sampleModel()

	slice, cursor, fellBack, err := Slice(m, nil, "0")
	assert.NoError(t, err)
	assert.False(t, fellBack)
	assert.Equal(t, automaton.State("0"), cursor)
	assert.Equal(t, 1, slice.Q.Len())
	assert.True(t, slice.F.Has("0"))
	assert.Equal(t, automaton.State("0"), slice.Start)
}

func Test_Slice_doesNotMutateSourceAndIsRepeatable(t *testing.T) {
	m := sampleModel()
	qBefore := m.Q.Len()

	trace := []automaton.Entry{{TID: "login"}}

	slice1, cur1, fellBack1, err := Slice(m, trace, "0")
	assert.NoError(t, err)
	assert.False(t, fellBack1)
	slice2, cur2, _, err := Slice(m, trace, "0")
	assert.NoError(t, err)

	assert.Equal(t, qBefore, m.Q.Len())
	assert.Equal(t, cur1, cur2)
	assert.Equal(t, slice1.Q.Len(), slice2.Q.Len())
	assert.True(t, slice1.F.Has(cur1))
	assert.Equal(t, automaton.State("1"), cur1)
}

func Test_Slice_rejectsTraceWithNoMatch(t *testing.T) {
	m := sampleModel()
	_, _, _, err := Slice(m, []automaton.Entry{{TID: "nonexistent"}}, "0")
	assert.Error(t, err)
}

func Test_Slice_fallsBackWhenNoGuardMatches(t *testing.T) {
	m := automaton.New()
	m.AddState("0", false)
	m.AddState("1", true)
	m.Start = "0"
	m.AddTransition("0", automaton.Symbol{TID: "login", Guard: `var0=="1"`}, "1")

	_, cursor, fellBack, err := Slice(m, []automaton.Entry{{TID: "login", Values: []string{"2"}}}, "0")
	assert.NoError(t, err)
	assert.True(t, fellBack, "no guard matched values=[2], so the ignore-guard fallback should have fired")
	assert.Equal(t, automaton.State("1"), cursor)
}

func Test_Stitcher_advancesCursorAcrossRuns(t *testing.T) {
	c1 := sampleModel()
	c2 := automaton.New()
	c2.AddState("0", true)
	c2.Start = "0"
	c2.AddTransition("0", automaton.Symbol{TID: "ping"}, "0")

	st := NewStitcher(map[string]*automaton.NFA{"c1": c1, "c2": c2})

	runs := []projector.Run{
		{Component: "c1", Entries: []projector.LogEntry{{Component: "c1", TID: "login"}}},
		{Component: "c2", Entries: []projector.LogEntry{{Component: "c2", TID: "ping"}}},
		{Component: "c1", Entries: []projector.LogEntry{{Component: "c1", TID: "logout"}}},
	}

	result, fellBack, err := st.StitchExecution(runs)
	assert.NoError(t, err)
	assert.False(t, fellBack)
	assert.NotNil(t, result)
	assert.Equal(t, automaton.State("0"), st.cursors["c1"], "c1's cursor should have advanced login->1->logout->0 across the two non-contiguous c1 runs")
	assert.Equal(t, automaton.State("0"), st.cursors["c2"])
}
