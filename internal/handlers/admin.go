package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"market-survey-portal/internal/cleanup"
	"market-survey-portal/internal/models"
	"market-survey-portal/internal/scheduler"
)

// AdminHandler handles admin-related requests
type AdminHandler struct {
	db             *gorm.DB
	scheduler      *scheduler.Scheduler
	cleanupService *cleanup.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, sched *scheduler.Scheduler) *AdminHandler {
	return &AdminHandler{
		db:             db,
		scheduler:      sched,
		cleanupService: cleanup.NewService(db),
	}
}

// GetStats returns system statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats := make(map[string]interface{})

	// Property counts
	var propertyCount, subjectCount int64
	h.db.Model(&models.Property{}).Count(&propertyCount)
	h.db.Model(&models.Property{}).Where("is_subject = ?", true).Count(&subjectCount)
	stats["properties"] = map[string]interface{}{
		"total":    propertyCount,
		"subjects": subjectCount,
	}

	// Import counts by status
	importCounts := map[string]int64{}
	for _, status := range []models.ImportStatus{
		models.ImportStatusProcessing,
		models.ImportStatusCompleted,
		models.ImportStatusError,
	} {
		var n int64
		h.db.Model(&models.DataImport{}).Where("status = ?", status).Count(&n)
		importCounts[string(status)] = n
	}
	stats["imports"] = importCounts

	// Floor plan counts by source
	var aiqPlans, rediqPlans int64
	h.db.Model(&models.FloorPlan{}).Where("data_source = ?", models.ImportSourceAIQ).Count(&aiqPlans)
	h.db.Model(&models.FloorPlan{}).Where("data_source = ?", models.ImportSourceRedIQ).Count(&rediqPlans)
	stats["floor_plans"] = map[string]interface{}{
		"aiq":   aiqPlans,
		"rediq": rediqPlans,
		"total": aiqPlans + rediqPlans,
	}

	// Report counts by status
	reportCounts := map[string]int64{}
	for _, status := range []models.ReportStatus{
		models.ReportStatusDraft,
		models.ReportStatusComplete,
		models.ReportStatusArchived,
	} {
		var n int64
		h.db.Model(&models.MarketReport{}).Where("status = ?", status).Count(&n)
		reportCounts[string(status)] = n
	}
	stats["reports"] = reportCounts

	// Search activity
	var searchCount, resultCount int64
	h.db.Model(&models.PropertySearch{}).Count(&searchCount)
	h.db.Model(&models.SearchResult{}).Count(&resultCount)
	stats["searches"] = map[string]interface{}{
		"total":   searchCount,
		"results": resultCount,
	}

	// Recent import activity (last 24 hours)
	last24h := time.Now().AddDate(0, 0, -1)
	var recentImports int64
	h.db.Model(&models.DataImport{}).Where("created_at >= ?", last24h).Count(&recentImports)
	stats["recent_activity"] = map[string]interface{}{
		"imports_last_24h": recentImports,
	}

	// Delete logs statistics
	deleteStats, err := h.cleanupService.GetDeleteStats()
	if err != nil {
		log.Printf("Failed to get delete stats: %v", err)
	} else {
		stats["deletions"] = deleteStats
	}

	c.JSON(http.StatusOK, stats)
}

// GetRecentActivity returns the latest imports
func (h *AdminHandler) GetRecentActivity(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "50")
	limit, _ := strconv.Atoi(limitStr)

	var imports []models.DataImport
	err := h.db.Order("created_at DESC").Limit(limit).Find(&imports).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imports": imports,
		"count":   len(imports),
	})
}

// TriggerRecurringRun manually re-queues recurring searches
func (h *AdminHandler) TriggerRecurringRun(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Scheduler not available (MySQL/GORM required)",
		})
		return
	}

	log.Println("Admin: manual recurring-search trigger requested")

	// Run in goroutine to avoid blocking
	go func() {
		if err := h.scheduler.RunNow(); err != nil {
			log.Printf("Admin: manual recurring run failed: %v", err)
		} else {
			log.Println("Admin: manual recurring run completed")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Recurring search re-queue started",
		"status":  "running",
	})
}

// RunCleanup executes retention deletion of old imports
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	var req struct {
		RetentionDays    int  `json:"retention_days"`
		MaxDeletionCount int  `json:"max_deletion_count"`
		DryRun           bool `json:"dry_run"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	config := cleanup.DefaultCleanupConfig()
	if req.RetentionDays > 0 {
		config.RetentionDays = req.RetentionDays
	}
	if req.MaxDeletionCount > 0 {
		config.MaxDeletionCount = req.MaxDeletionCount
	}
	config.DryRun = req.DryRun

	log.Printf("Admin: running cleanup (retention: %d days, max: %d, dry-run: %v)",
		config.RetentionDays, config.MaxDeletionCount, config.DryRun)

	result, err := h.cleanupService.Run(config)
	if err != nil {
		log.Printf("Admin: cleanup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("Admin: cleanup completed: %d/%d deleted (dry-run: %v)",
		result.DeletedCount, result.TargetCount, result.DryRun)

	c.JSON(http.StatusOK, result)
}

// GetDeleteLogs returns recent delete log entries
func (h *AdminHandler) GetDeleteLogs(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "100")
	limit, _ := strconv.Atoi(limitStr)

	logs, err := h.cleanupService.GetRecentDeleteLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}
