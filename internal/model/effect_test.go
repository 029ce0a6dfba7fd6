package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTargets(t *testing.T) {
	tests := []struct {
		name   string
		effect Effect
		want   bool
	}{
		{"duration modifier", DurationModifier{Activities: []string{"A", "B"}, Days: 1}, true},
		{"worker modifier", WorkerModifier{Activities: []string{"B"}}, true},
		{"resource dependant", ResourceDependant{Activities: []string{"B"}}, true},
		{"reveal", RevealActivity{Activities: []string{"B"}}, true},
		{"other activity", RevealActivity{Activities: []string{"M"}}, false},
		{"reward", ImmediateReward{Amount: decimal.NewFromInt(10)}, false},
		{"bid duration", BidDurationModifier{Weeks: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Targets(tt.effect, "B"))
		})
	}
}

func TestOneTime(t *testing.T) {
	assert.True(t, OneTime(ImmediateReward{}))
	assert.True(t, OneTime(BidDurationModifier{}))
	assert.False(t, OneTime(DurationModifier{}))
	assert.False(t, OneTime(RevealActivity{}))
}
