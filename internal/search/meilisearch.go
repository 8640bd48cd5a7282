package search

import (
	"github.com/meilisearch/meilisearch-go"

	"market-survey-portal/internal/models"
)

type SearchClient struct {
	client *meilisearch.Client
	index  string
}

func NewSearchClient(host, apiKey string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})

	return &SearchClient{
		client: client,
		index:  "search_results",
	}
}

// InitIndex initializes the Meilisearch index
func (s *SearchClient) InitIndex() error {
	// Create index if it doesn't exist
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	// Ignore error if index already exists
	if err != nil && err.Error() != "index already exists" {
		return err
	}

	// Configure searchable attributes
	_, err = s.client.Index(s.index).UpdateSearchableAttributes(&[]string{
		"property_name",
		"address",
		"city",
		"notes",
		"data_source",
	})
	if err != nil {
		return err
	}

	// Configure filterable attributes
	_, err = s.client.Index(s.index).UpdateFilterableAttributes(&[]string{
		"id",
		"search_id",
		"urgency_level",
		"opportunity_type",
		"status",
		"units",
		"score",
		"property_class",
	})
	if err != nil {
		return err
	}

	// Configure sortable attributes
	_, err = s.client.Index(s.index).UpdateSortableAttributes(&[]string{
		"score",
		"units",
		"price",
		"days_on_market",
	})
	if err != nil {
		return err
	}

	return nil
}

// IndexResult indexes a single search result
func (s *SearchClient) IndexResult(result *models.SearchResult) error {
	_, err := s.client.Index(s.index).AddDocuments([]models.SearchResult{*result})
	return err
}

// IndexResults indexes multiple search results
func (s *SearchClient) IndexResults(results []models.SearchResult) error {
	if len(results) == 0 {
		return nil
	}
	_, err := s.client.Index(s.index).AddDocuments(results)
	return err
}

// DeleteBySearch removes every indexed document for one search
func (s *SearchClient) DeleteBySearch(searchID uint, resultIDs []uint) error {
	if len(resultIDs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(resultIDs))
	for _, id := range resultIDs {
		ids = append(ids, uintToString(id))
	}
	_, err := s.client.Index(s.index).DeleteDocuments(ids)
	return err
}

// SearchRequest represents advanced search parameters
type SearchRequest struct {
	Query  string
	Limit  int64
	Offset int64
	Filter []string
	Sort   []string
}

// SearchResponse represents search results
type SearchResponse struct {
	Hits           []models.SearchResult
	TotalHits      int64
	ProcessingTime int64
}

// Search searches indexed results with basic options
func (s *SearchClient) Search(query string, limit int64) ([]models.SearchResult, error) {
	res, err := s.AdvancedSearch(SearchRequest{
		Query: query,
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}
	return res.Hits, nil
}

// AdvancedSearch performs search with filters and sorting
func (s *SearchClient) AdvancedSearch(req SearchRequest) (*SearchResponse, error) {
	if req.Limit == 0 {
		req.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit:  req.Limit,
		Offset: req.Offset,
	}

	if len(req.Filter) > 0 {
		filterStr := ""
		for i, f := range req.Filter {
			if i > 0 {
				filterStr += " AND "
			}
			filterStr += f
		}
		searchReq.Filter = filterStr
	}

	if len(req.Sort) > 0 {
		searchReq.Sort = req.Sort
	}

	searchRes, err := s.client.Index(s.index).Search(req.Query, searchReq)
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(searchRes.Hits))
	for _, hit := range searchRes.Hits {
		results = append(results, parseResultFromHit(hit))
	}

	return &SearchResponse{
		Hits:           results,
		TotalHits:      searchRes.EstimatedTotalHits,
		ProcessingTime: searchRes.ProcessingTimeMs,
	}, nil
}

// parseResultFromHit converts a search hit to a SearchResult
func parseResultFromHit(hit interface{}) models.SearchResult {
	hitMap, ok := hit.(map[string]interface{})
	if !ok {
		return models.SearchResult{}
	}

	result := models.SearchResult{
		PropertyName:    getString(hitMap, "property_name"),
		Address:         getString(hitMap, "address"),
		City:            getString(hitMap, "city"),
		State:           getString(hitMap, "state"),
		ZipCode:         getString(hitMap, "zip_code"),
		PropertyClass:   getString(hitMap, "property_class"),
		OpportunityType: models.OpportunityType(getString(hitMap, "opportunity_type")),
		UrgencyLevel:    models.UrgencyLevel(getString(hitMap, "urgency_level")),
		DataSource:      getString(hitMap, "data_source"),
		SourceURL:       getString(hitMap, "source_url"),
		Status:          models.ResultStatus(getString(hitMap, "status")),
		Notes:           getString(hitMap, "notes"),
	}

	if id, ok := hitMap["id"].(float64); ok {
		result.ID = uint(id)
	}
	if searchID, ok := hitMap["search_id"].(float64); ok {
		result.SearchID = uint(searchID)
	}
	if units, ok := hitMap["units"].(float64); ok {
		unitsInt := int(units)
		result.Units = &unitsInt
	}
	if yearBuilt, ok := hitMap["year_built"].(float64); ok {
		yearInt := int(yearBuilt)
		result.YearBuilt = &yearInt
	}
	if price, ok := hitMap["price"].(float64); ok {
		result.Price = &price
	}
	if occupancy, ok := hitMap["occupancy_rate"].(float64); ok {
		result.OccupancyRate = &occupancy
	}
	if capRate, ok := hitMap["cap_rate"].(float64); ok {
		result.CapRate = &capRate
	}
	if dom, ok := hitMap["days_on_market"].(float64); ok {
		domInt := int(dom)
		result.DaysOnMarket = &domInt
	}
	if score, ok := hitMap["score"].(float64); ok {
		result.Score = int(score)
	}

	return result
}

// getString safely extracts a string from map
func getString(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}
