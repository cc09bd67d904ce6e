package perr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Error_Is_sentinels(t *testing.T) {
	err := LearnerErrorf(errors.New("exit status 1"), "component %q failed", "auth")

	assert.True(t, errors.Is(err, ErrLearnerFailed))
	assert.False(t, errors.Is(err, ErrStructural))
}

func Test_Fatal(t *testing.T) {
	structural := Structuralf("empty transition image for state %q", "s0")
	learner := LearnerErrorf(errors.New("timeout"), "component timed out")

	assert.True(t, Fatal(structural))
	assert.False(t, Fatal(learner))
}

func Test_Error_message(t *testing.T) {
	err := TraceRejectedf("execution %s: no matching guard at step %d", "e1", 3)
	assert.Equal(t, "trace-rejected: execution e1: no matching guard at step 3", err.Error())
}
