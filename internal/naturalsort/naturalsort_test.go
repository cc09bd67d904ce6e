package naturalsort

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Strings(t *testing.T) {
	testCases := []struct {
		name   string
		input  []string
		expect []string
	}{
		{
			name:   "numeric state names",
			input:  []string{"state10", "state2", "state1"},
			expect: []string{"state1", "state2", "state10"},
		},
		{
			name:   "plain integers as strings",
			input:  []string{"10", "2", "1", "20"},
			expect: []string{"1", "2", "10", "20"},
		},
		{
			name:   "comma composite names sort by first differing element",
			input:  []string{"0,1,2", "0,1", "0,10"},
			expect: []string{"0,1", "0,1,2", "0,10"},
		},
		{
			name:   "leading zeros don't change numeric value",
			input:  []string{"007", "10", "7"},
			expect: []string{"007", "7", "10"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, Strings(tc.input))
		})
	}
}

func Test_Compare_equalStrings(t *testing.T) {
	assert.Equal(t, 0, Compare("abc123", "abc123"))
}
