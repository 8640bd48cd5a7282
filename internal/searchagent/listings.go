package searchagent

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"market-survey-portal/internal/excel"
	"market-survey-portal/internal/models"
)

// runLive fetches the configured listings page and extracts property cards.
// Scores and urgency are computed here, unlike mock mode where the canned
// candidates carry them.
func (a *Agent) runLive(search *models.PropertySearch) ([]models.SearchResult, error) {
	req, err := http.NewRequest("GET", a.listingsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build listings request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listings page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listings page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listings page: %w", err)
	}

	var results []models.SearchResult
	doc.Find(".property-card, article.listing").Each(func(i int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Find(".property-name, h2").First().Text())
		if name == "" {
			return
		}

		units := parseIntField(s, ".units")
		if units != nil && *units < search.MinUnits {
			return
		}
		if search.MaxUnits != nil && units != nil && *units > *search.MaxUnits {
			return
		}

		occupancy := parseFloatField(s, ".occupancy")
		capRate := parseFloatField(s, ".cap-rate")
		daysOnMarket := parseIntField(s, ".days-on-market")

		oppType := classifyListing(s, occupancy, daysOnMarket)
		score := OpportunityScore(oppType, occupancy, capRate, daysOnMarket)

		result := models.SearchResult{
			PropertyName:    name,
			Address:         strings.TrimSpace(s.Find(".address").First().Text()),
			City:            strings.TrimSpace(s.Find(".city").First().Text()),
			State:           strings.TrimSpace(s.Find(".state").First().Text()),
			Units:           units,
			PropertyClass:   strings.TrimSpace(s.Find(".property-class").First().Text()),
			YearBuilt:       parseIntField(s, ".year-built"),
			Price:           parseFloatField(s, ".price"),
			OpportunityType: oppType,
			UrgencyLevel:    UrgencyFor(score, occupancy, daysOnMarket),
			OccupancyRate:   occupancy,
			CapRate:         capRate,
			DaysOnMarket:    daysOnMarket,
			Score:           score,
			DataSource:      "listings",
		}
		if href, exists := s.Find("a").First().Attr("href"); exists {
			result.SourceURL = href
		}
		if result.Price != nil && units != nil && *units > 0 {
			ppu := *result.Price / float64(*units)
			result.PricePerUnit = &ppu
		}
		results = append(results, result)
	})

	log.Printf("[SearchAgent] live search extracted %d candidates from %s", len(results), a.listingsURL)
	return results, nil
}

// classifyListing infers why a listed property is interesting from whatever
// signals the card exposes.
func classifyListing(s *goquery.Selection, occupancy *float64, daysOnMarket *int) models.OpportunityType {
	badge := strings.ToLower(strings.TrimSpace(s.Find(".badge, .status").First().Text()))
	switch {
	case strings.Contains(badge, "auction"), strings.Contains(badge, "distressed"):
		return models.OpportunityDistressedSale
	case strings.Contains(badge, "construction"), strings.Contains(badge, "lease-up"):
		return models.OpportunityNewConstruction
	}
	if occupancy != nil && *occupancy < 85 {
		return models.OpportunityUnderperforming
	}
	if daysOnMarket != nil && *daysOnMarket < 7 {
		return models.OpportunityNewListing
	}
	return models.OpportunityNewListing
}

func parseFloatField(s *goquery.Selection, selector string) *float64 {
	return excel.ParseNumber(s.Find(selector).First().Text())
}

func parseIntField(s *goquery.Selection, selector string) *int {
	v := excel.ParseNumber(s.Find(selector).First().Text())
	if v == nil {
		return nil
	}
	i := int(*v)
	return &i
}
