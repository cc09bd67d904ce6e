package report

import (
	"testing"
	"time"

	"github.com/dekarrin/prins/internal/automaton"
	"github.com/stretchr/testify/assert"
)

func Test_MetricsTable_containsAllFields(t *testing.T) {
	out := MetricsTable(10*time.Millisecond, 20*time.Millisecond, 5*time.Millisecond, 0.5)
	assert.Contains(t, out, "Projection time")
	assert.Contains(t, out, "Inference time")
	assert.Contains(t, out, "Stitching time")
	assert.Contains(t, out, "Component diversity")
	assert.Contains(t, out, "0.5000")
}

func Test_AutomatonSummaryTable_listsTransitions(t *testing.T) {
	d := automaton.NewDFA()
	d.AddState("0", false)
	d.AddState("1", true)
	d.Start = "0"
	d.AddTransition("0", automaton.Symbol{TID: "login"}, "1")

	out := AutomatonSummaryTable(d)
	assert.Contains(t, out, "start=0")
	assert.Contains(t, out, "accepting={1}")
	assert.Contains(t, out, "login")
}
