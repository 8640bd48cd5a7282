package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"market-survey-portal/internal/database"
	"market-survey-portal/internal/models"
	"market-survey-portal/internal/pipeline"
	"market-survey-portal/internal/ratelimit"
	"market-survey-portal/internal/searchagent"
)

// resultDeindexer removes indexed documents when their search goes away.
type resultDeindexer interface {
	DeleteBySearch(searchID uint, resultIDs []uint) error
}

// SearchHandler handles property search CRUD and execution
type SearchHandler struct {
	db       *database.GormDB
	executor *searchagent.Executor
	pipeline *pipeline.Service
	limiter  *ratelimit.Limiter
	index    resultDeindexer
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(db *database.GormDB, executor *searchagent.Executor, pipe *pipeline.Service, limiter *ratelimit.Limiter, index resultDeindexer) *SearchHandler {
	return &SearchHandler{
		db:       db,
		executor: executor,
		pipeline: pipe,
		limiter:  limiter,
		index:    index,
	}
}

// Create creates a new property search in pending status
func (h *SearchHandler) Create(c *gin.Context) {
	var req struct {
		Name              string `json:"name" binding:"required"`
		GeographicArea    string `json:"geographic_area" binding:"required"`
		PropertyClass     string `json:"property_class"`
		MinUnits          *int   `json:"min_units"`
		MaxUnits          *int   `json:"max_units"`
		SearchDepth       string `json:"search_depth"`
		Timeframe         string `json:"timeframe"`
		IsRecurring       bool   `json:"is_recurring"`
		RecurringSchedule string `json:"recurring_schedule"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	search := &models.PropertySearch{
		Name:              req.Name,
		GeographicArea:    req.GeographicArea,
		PropertyClass:     "B- to A+",
		MinUnits:          100,
		MaxUnits:          req.MaxUnits,
		SearchDepth:       models.SearchDepthQuick,
		Timeframe:         "48h",
		Status:            models.SearchStatusPending,
		IsRecurring:       req.IsRecurring,
		RecurringSchedule: req.RecurringSchedule,
	}
	if req.PropertyClass != "" {
		search.PropertyClass = req.PropertyClass
	}
	if req.MinUnits != nil {
		search.MinUnits = *req.MinUnits
	}
	if req.SearchDepth == models.SearchDepthDeep {
		search.SearchDepth = models.SearchDepthDeep
	}
	if req.Timeframe != "" {
		search.Timeframe = req.Timeframe
	}

	if err := h.db.CreateSearch(search); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, search)
}

// List returns all searches, newest first
func (h *SearchHandler) List(c *gin.Context) {
	searches, err := h.db.ListSearches()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"searches": searches,
		"count":    len(searches),
	})
}

// Get returns a search with its results grouped by urgency
func (h *SearchHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	search, err := h.db.GetSearchByID(id)
	if err != nil {
		respondNotFoundOrError(c, err, "search not found")
		return
	}

	results, err := h.db.GetSearchResults(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	grouped := map[models.UrgencyLevel][]models.SearchResult{}
	for _, r := range results {
		grouped[r.UrgencyLevel] = append(grouped[r.UrgencyLevel], r)
	}

	c.JSON(http.StatusOK, gin.H{
		"search": search,
		"results": gin.H{
			"all":        results,
			"immediate":  grouped[models.UrgencyImmediate],
			"developing": grouped[models.UrgencyDeveloping],
			"future":     grouped[models.UrgencyFuture],
		},
	})
}

// Execute runs a search immediately in the background
func (h *SearchHandler) Execute(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if h.limiter != nil && !h.limiter.Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "search run rate limit exceeded"})
		return
	}

	search, err := h.db.GetSearchByID(id)
	if err != nil {
		respondNotFoundOrError(c, err, "search not found")
		return
	}
	if search.Status == models.SearchStatusRunning {
		c.JSON(http.StatusConflict, gin.H{"error": "search is already running"})
		return
	}

	go func() {
		if err := h.executor.Execute(id); err != nil {
			log.Printf("[SearchHandler] execution of search %d failed: %v", id, err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"search_id": id,
		"status":    "running",
	})
}

// Delete removes a search, all of its results, and their indexed documents
func (h *SearchHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if _, err := h.db.GetSearchByID(id); err != nil {
		respondNotFoundOrError(c, err, "search not found")
		return
	}

	// Collect result IDs before the delete; afterwards there is nothing
	// left to match the indexed documents against.
	results, err := h.db.GetSearchResults(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.DeleteSearch(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.index != nil && len(results) > 0 {
		ids := make([]uint, 0, len(results))
		for _, r := range results {
			ids = append(ids, r.ID)
		}
		// Best effort: the rows are already gone, and a reindex reconciles
		// the index if this fails.
		if err := h.index.DeleteBySearch(id, ids); err != nil {
			log.Printf("[SearchHandler] failed to deindex results for search %d: %v", id, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// UpdateResult updates a result's pipeline status and/or notes
func (h *SearchHandler) UpdateResult(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Status *string `json:"status"`
		Notes  *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != nil && !models.ValidResultStatus(*req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid result status"})
		return
	}

	result, err := h.pipeline.UpdateResult(id, req.Status, req.Notes)
	if err != nil {
		respondNotFoundOrError(c, err, "result not found")
		return
	}

	c.JSON(http.StatusOK, result)
}

// RecentChanges returns recent pipeline transitions
func (h *SearchHandler) RecentChanges(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "50")
	limit, _ := strconv.Atoi(limitStr)

	changes, err := h.pipeline.RecentChanges(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes": changes,
		"count":   len(changes),
	})
}
