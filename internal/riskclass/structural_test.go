package riskclass

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/rerate/internal/contracts"
)

func fp(v float64) *float64 { return &v }

func TestClassifyStructural(t *testing.T) {
	tests := []struct {
		name      string
		netDebt   *float64
		ebitda    *float64
		wantLevel contracts.RiskLevel
		wantScore int
		wantNote  string
	}{
		{
			name:      "missing inputs",
			wantLevel: contracts.RiskLow,
			wantScore: 0,
			wantNote:  NoteInsufficient,
		},
		{
			name:      "negative ebitda",
			netDebt:   fp(500),
			ebitda:    fp(-100),
			wantLevel: contracts.RiskHigh,
			wantScore: -6,
			wantNote:  NoteNegativeEBITDA,
		},
		{
			name:      "net cash",
			netDebt:   fp(-200),
			ebitda:    fp(100),
			wantLevel: contracts.RiskLow,
			wantScore: 0,
			wantNote:  NoteNetCash,
		},
		{
			name:      "comfortable under 2x",
			netDebt:   fp(150),
			ebitda:    fp(100),
			wantLevel: contracts.RiskLow,
			wantScore: 0,
		},
		{
			name:      "elevated 2-3x",
			netDebt:   fp(250),
			ebitda:    fp(100),
			wantLevel: contracts.RiskElevated,
			wantScore: -2,
		},
		{
			name:      "high 3-5x",
			netDebt:   fp(400),
			ebitda:    fp(100),
			wantLevel: contracts.RiskHigh,
			wantScore: -4,
		},
		{
			name:      "severe 5-7x",
			netDebt:   fp(600),
			ebitda:    fp(100),
			wantLevel: contracts.RiskHigh,
			wantScore: -6,
		},
		{
			name:      "extreme over 7x",
			netDebt:   fp(800),
			ebitda:    fp(100),
			wantLevel: contracts.RiskHigh,
			wantScore: -8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyStructural(tt.netDebt, tt.ebitda)
			assert.Equal(t, tt.wantLevel, got.Level)
			assert.Equal(t, tt.wantScore, got.Score)
			if tt.wantNote != "" {
				assert.Equal(t, tt.wantNote, got.Note)
			}
		})
	}
}

func TestLeverageRatio(t *testing.T) {
	assert.Nil(t, LeverageRatio(nil, fp(100)))
	assert.Nil(t, LeverageRatio(fp(100), nil))
	assert.Nil(t, LeverageRatio(fp(100), fp(0)))

	got := LeverageRatio(fp(350), fp(100))
	assert.NotNil(t, got)
	assert.InDelta(t, 3.5, *got, 0.001)
}
