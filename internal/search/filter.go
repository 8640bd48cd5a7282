package search

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/meilisearch/meilisearch-go"

	"market-survey-portal/internal/models"
)

type FilterParams struct {
	Query        string
	UrgencyLevel string
	Status       string
	MinUnits     *int
	MaxUnits     *int
	MinScore     *int
	SortBy       string
	Limit        int64
}

// FilterSearch performs filtered search over indexed acquisition results
func (s *SearchClient) FilterSearch(params FilterParams) ([]models.SearchResult, error) {
	var filters []string

	if params.UrgencyLevel != "" {
		filters = append(filters, fmt.Sprintf("urgency_level = '%s'", params.UrgencyLevel))
	}
	if params.Status != "" {
		filters = append(filters, fmt.Sprintf("status = '%s'", params.Status))
	}
	if params.MinUnits != nil {
		filters = append(filters, fmt.Sprintf("units >= %d", *params.MinUnits))
	}
	if params.MaxUnits != nil {
		filters = append(filters, fmt.Sprintf("units <= %d", *params.MaxUnits))
	}
	if params.MinScore != nil {
		filters = append(filters, fmt.Sprintf("score >= %d", *params.MinScore))
	}

	var filterStr string
	if len(filters) > 0 {
		filterStr = strings.Join(filters, " AND ")
	}

	var sort []string
	if params.SortBy != "" {
		sort = []string{params.SortBy}
	}

	if params.Limit == 0 {
		params.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit: params.Limit,
	}
	if filterStr != "" {
		searchReq.Filter = filterStr
	}
	if len(sort) > 0 {
		searchReq.Sort = sort
	}

	searchRes, err := s.client.Index(s.index).Search(params.Query, searchReq)
	if err != nil {
		return nil, err
	}

	var results []models.SearchResult
	for _, hit := range searchRes.Hits {
		hitJSON, err := json.Marshal(hit)
		if err != nil {
			continue
		}

		var result models.SearchResult
		if err := json.Unmarshal(hitJSON, &result); err != nil {
			continue
		}

		results = append(results, result)
	}

	return results, nil
}

func uintToString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
