package searchagent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-survey-portal/internal/config"
	"market-survey-portal/internal/models"
)

func mockAgent() *Agent {
	cfg := config.DefaultConfig().SearchAgent
	return NewAgent(cfg)
}

func TestAgentMockQuickSearch(t *testing.T) {
	agent := mockAgent()

	results, err := agent.Run(&models.PropertySearch{
		GeographicArea: "Dallas, TX",
		MinUnits:       100,
		SearchDepth:    models.SearchDepthQuick,
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	for _, r := range results {
		assert.Equal(t, "Dallas", r.City, "city comes from the searched area")
		require.NotNil(t, r.Units)
		assert.GreaterOrEqual(t, *r.Units, 100)
	}
}

func TestAgentDeepSearchAddsCompanyTargets(t *testing.T) {
	agent := mockAgent()

	results, err := agent.Run(&models.PropertySearch{
		GeographicArea: "Austin, TX",
		MinUnits:       100,
		SearchDepth:    models.SearchDepthDeep,
	})
	require.NoError(t, err)
	require.Len(t, results, 5)

	var target *models.SearchResult
	for i := range results {
		if results[i].OpportunityType == models.OpportunityCompanyTarget {
			target = &results[i]
		}
	}
	require.NotNil(t, target, "deep searches surface off-market company targets")
	assert.Equal(t, "Harbor Point Residences", target.PropertyName)
}

func TestAgentUnitFilters(t *testing.T) {
	agent := mockAgent()

	results, err := agent.Run(&models.PropertySearch{
		GeographicArea: "Dallas, TX",
		MinUnits:       160,
		SearchDepth:    models.SearchDepthQuick,
	})
	require.NoError(t, err)
	for _, r := range results {
		require.NotNil(t, r.Units)
		assert.GreaterOrEqual(t, *r.Units, 160)
	}

	maxUnits := 160
	results, err = agent.Run(&models.PropertySearch{
		GeographicArea: "Dallas, TX",
		MinUnits:       100,
		MaxUnits:       &maxUnits,
		SearchDepth:    models.SearchDepthQuick,
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		require.NotNil(t, r.Units)
		assert.LessOrEqual(t, *r.Units, 160)
	}
}

func TestAgentLiveModeRequiresURL(t *testing.T) {
	cfg := config.DefaultConfig().SearchAgent
	cfg.Mode = "live"
	cfg.ListingsURL = ""
	agent := NewAgent(cfg)

	_, err := agent.Run(&models.PropertySearch{GeographicArea: "Dallas, TX"})
	assert.Error(t, err)
}
