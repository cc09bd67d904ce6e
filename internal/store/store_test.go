package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dekarrin/prins/internal/automaton"
	"github.com/stretchr/testify/assert"
)

func sampleRun() Run {
	n := automaton.New()
	n.AddState("0", false)
	n.AddState("1", true)
	n.Start = "0"
	n.AddTransition("0", automaton.Symbol{TID: "login"}, "1")

	d, _ := n.StandardDeterminize(0)

	return Run{
		ConfigTOML:         "workers = 4\n",
		ProjectionTime:     10 * time.Millisecond,
		InferenceTime:      20 * time.Millisecond,
		StitchingTime:      5 * time.Millisecond,
		ComponentDiversity: 1.0,
		System:             n,
		Determinized:       d,
	}
}

func Test_SQLiteStore_CreateAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := NewSQLiteStore(path)
	assert.NoError(t, err)
	defer s.Close()

	created, err := s.Create(context.Background(), sampleRun())
	assert.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := s.Get(context.Background(), created.ID)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.ConfigTOML, got.ConfigTOML)
	assert.InDelta(t, 1.0, got.ComponentDiversity, 1e-9)
	assert.Equal(t, 2, got.System.Q.Len())
	assert.Equal(t, 2, got.Determinized.Q.Len())
}

func Test_SQLiteStore_GetMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := NewSQLiteStore(path)
	assert.NoError(t, err)
	defer s.Close()

	_, err = s.Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}
