package searchagent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"market-survey-portal/internal/models"
)

func TestOpportunityScore(t *testing.T) {
	tests := []struct {
		name         string
		oppType      models.OpportunityType
		occupancy    *float64
		capRate      *float64
		daysOnMarket *int
		want         int
	}{
		{"base line, no signals", models.OpportunityCompanyTarget, nil, nil, nil, 50},
		{"new listing bonus", models.OpportunityNewListing, nil, nil, nil, 60},
		{"underperforming bonus", models.OpportunityUnderperforming, nil, nil, nil, 65},
		{"distressed bonus", models.OpportunityDistressedSale, nil, nil, nil, 70},
		{"deep vacancy", models.OpportunityCompanyTarget, fp(65), nil, nil, 65},
		{"soft occupancy", models.OpportunityCompanyTarget, fp(80), nil, nil, 60},
		{"full building penalty", models.OpportunityCompanyTarget, fp(97), nil, nil, 45},
		{"long exposure", models.OpportunityCompanyTarget, nil, nil, ip(120), 60},
		{"fresh listing", models.OpportunityCompanyTarget, nil, nil, ip(3), 55},
		{"high cap rate", models.OpportunityCompanyTarget, nil, fp(7.5), nil, 60},
		{"decent cap rate", models.OpportunityCompanyTarget, nil, fp(6.5), nil, 55},
		{"stacked distress caps at 100", models.OpportunityDistressedSale, fp(60), fp(8), ip(120), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OpportunityScore(tt.oppType, tt.occupancy, tt.capRate, tt.daysOnMarket)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUrgencyFor(t *testing.T) {
	tests := []struct {
		name         string
		score        int
		occupancy    *float64
		daysOnMarket *int
		want         models.UrgencyLevel
	}{
		{"high score", 85, nil, nil, models.UrgencyImmediate},
		{"deep vacancy overrides score", 40, fp(65), nil, models.UrgencyImmediate},
		{"long exposure overrides score", 40, nil, ip(95), models.UrgencyImmediate},
		{"mid score", 65, nil, nil, models.UrgencyDeveloping},
		{"stale but low score", 40, nil, ip(45), models.UrgencyDeveloping},
		{"low everything", 40, fp(92), ip(10), models.UrgencyFuture},
		{"boundary at 80", 80, nil, nil, models.UrgencyImmediate},
		{"boundary at 60", 60, nil, nil, models.UrgencyDeveloping},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UrgencyFor(tt.score, tt.occupancy, tt.daysOnMarket))
		})
	}
}

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }
