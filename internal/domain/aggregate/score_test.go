package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		checks   int
		threats  int
		expected Scores
	}{
		{name: "clean", checks: 0, threats: 0, expected: Scores{PatchCompliance: 100, Security: 100, Health: 100}},
		{name: "some checks", checks: 3, threats: 0, expected: Scores{PatchCompliance: 70, Security: 100, Health: 85}},
		{name: "some threats", checks: 0, threats: 3, expected: Scores{PatchCompliance: 100, Security: 85, Health: 92}},
		{name: "clamped", checks: 25, threats: 40, expected: Scores{PatchCompliance: 0, Security: 0, Health: 0}},
		{name: "odd average floors", checks: 1, threats: 1, expected: Scores{PatchCompliance: 90, Security: 95, Health: 92}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Score(tt.checks, tt.threats))
		})
	}
}

func TestCriticalThreatsPerClient(t *testing.T) {
	assert.Equal(t, 3, CriticalThreatsPerClient(7, 2))
	assert.Equal(t, 7, CriticalThreatsPerClient(7, 0))
	assert.Equal(t, 0, CriticalThreatsPerClient(0, 5))
}
