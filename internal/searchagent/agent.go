package searchagent

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"market-survey-portal/internal/config"
	"market-survey-portal/internal/models"
)

// Agent produces candidate acquisition properties for a search. The default
// mock mode generates a deterministic candidate set; live mode pulls a
// listings page and extracts property cards from its HTML.
type Agent struct {
	mode        string
	listingsURL string
	userAgent   string
	client      *http.Client
}

// NewAgent builds an agent from configuration
func NewAgent(cfg config.SearchAgentConfig) *Agent {
	return &Agent{
		mode:        cfg.Mode,
		listingsURL: cfg.ListingsURL,
		userAgent:   cfg.UserAgent,
		client:      &http.Client{Timeout: cfg.GetTimeout()},
	}
}

// Run executes one search and returns its candidate results. Results carry
// no SearchID; the caller attaches them when persisting.
func (a *Agent) Run(search *models.PropertySearch) ([]models.SearchResult, error) {
	if a.mode == "live" {
		if a.listingsURL == "" {
			return nil, fmt.Errorf("live search mode requires a listings URL")
		}
		return a.runLive(search)
	}
	return a.mockResults(search), nil
}

// mockResults generates the stand-in candidate set used until a real data
// feed is connected. Cities follow the searched area; results below the
// search's unit floor are dropped.
func (a *Agent) mockResults(search *models.PropertySearch) []models.SearchResult {
	city := strings.TrimSpace(strings.Split(search.GeographicArea, ",")[0])

	candidates := []models.SearchResult{
		{
			PropertyName:    "Riverside Apartments",
			Address:         "123 River St",
			City:            city,
			State:           "TX",
			ZipCode:         "75001",
			Units:           intPtr(150),
			PropertyClass:   "B+",
			YearBuilt:       intPtr(2010),
			Price:           floatPtr(18000000),
			PricePerUnit:    floatPtr(120000),
			OpportunityType: models.OpportunityNewListing,
			UrgencyLevel:    models.UrgencyImmediate,
			OccupancyRate:   floatPtr(92),
			CapRate:         floatPtr(5.5),
			DaysOnMarket:    intPtr(5),
			Score:           85,
			DataSource:      "LoopNet",
			SourceURL:       "https://loopnet.com/example",
			RawData:         `{"source":"mock"}`,
		},
		{
			PropertyName:    "Sunset Gardens",
			Address:         "456 Sunset Blvd",
			City:            city,
			State:           "TX",
			ZipCode:         "75002",
			Units:           intPtr(200),
			PropertyClass:   "A-",
			YearBuilt:       intPtr(2015),
			Price:           floatPtr(30000000),
			PricePerUnit:    floatPtr(150000),
			OpportunityType: models.OpportunityUnderperforming,
			UrgencyLevel:    models.UrgencyDeveloping,
			OccupancyRate:   floatPtr(78),
			CapRate:         floatPtr(6.2),
			DaysOnMarket:    intPtr(45),
			Score:           72,
			DataSource:      "CoStar",
			SourceURL:       "https://costar.com/example",
			RawData:         `{"source":"mock"}`,
		},
		{
			PropertyName:    "Oak Hill Commons",
			Address:         "789 Oak Hill Dr",
			City:            city,
			State:           "TX",
			ZipCode:         "75003",
			Units:           intPtr(120),
			PropertyClass:   "B",
			YearBuilt:       intPtr(2008),
			Price:           floatPtr(12000000),
			PricePerUnit:    floatPtr(100000),
			OpportunityType: models.OpportunityDistressedSale,
			UrgencyLevel:    models.UrgencyImmediate,
			OccupancyRate:   floatPtr(65),
			CapRate:         floatPtr(7.5),
			DaysOnMarket:    intPtr(90),
			Score:           90,
			DataSource:      "Auction.com",
			SourceURL:       "https://auction.com/example",
			RawData:         `{"source":"mock"}`,
		},
		{
			PropertyName:    "Metro Plaza",
			Address:         "321 Metro Way",
			City:            city,
			State:           "TX",
			ZipCode:         "75004",
			Units:           intPtr(180),
			PropertyClass:   "A",
			YearBuilt:       intPtr(2020),
			Price:           floatPtr(36000000),
			PricePerUnit:    floatPtr(200000),
			OpportunityType: models.OpportunityNewConstruction,
			UrgencyLevel:    models.UrgencyFuture,
			OccupancyRate:   floatPtr(45),
			CapRate:         floatPtr(4.8),
			DaysOnMarket:    intPtr(0),
			Score:           65,
			DataSource:      "Crexi",
			SourceURL:       "https://crexi.com/example",
			RawData:         `{"source":"mock"}`,
		},
	}

	// Deep searches widen the net to targets that never hit public listings.
	if search.SearchDepth == models.SearchDepthDeep {
		candidates = append(candidates, models.SearchResult{
			PropertyName:    "Harbor Point Residences",
			Address:         "55 Harbor Point Rd",
			City:            city,
			State:           "TX",
			ZipCode:         "75005",
			Units:           intPtr(250),
			PropertyClass:   "B",
			YearBuilt:       intPtr(2005),
			Price:           floatPtr(27500000),
			PricePerUnit:    floatPtr(110000),
			OpportunityType: models.OpportunityCompanyTarget,
			UrgencyLevel:    models.UrgencyDeveloping,
			OccupancyRate:   floatPtr(81),
			CapRate:         floatPtr(6.8),
			DaysOnMarket:    nil,
			Score:           60,
			DataSource:      "Company research",
			RawData:         `{"source":"mock","phase":"deep"}`,
		})
	}

	var out []models.SearchResult
	for _, c := range candidates {
		if c.Units != nil && *c.Units < search.MinUnits {
			continue
		}
		if search.MaxUnits != nil && c.Units != nil && *c.Units > *search.MaxUnits {
			continue
		}
		out = append(out, c)
	}
	log.Printf("[SearchAgent] mock search produced %d candidates for %q", len(out), search.GeographicArea)
	return out
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
