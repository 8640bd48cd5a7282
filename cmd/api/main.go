package main

import (
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"market-survey-portal/internal/config"
	"market-survey-portal/internal/database"
	"market-survey-portal/internal/excel"
	"market-survey-portal/internal/handlers"
	"market-survey-portal/internal/importer"
	"market-survey-portal/internal/models"
	"market-survey-portal/internal/pipeline"
	"market-survey-portal/internal/ratelimit"
	"market-survey-portal/internal/scheduler"
	"market-survey-portal/internal/search"
	"market-survey-portal/internal/searchagent"
)

var (
	db              *database.DB
	gormDB          *database.GormDB
	searchClient    *search.SearchClient
	appConfig       *config.Config
	uploadLimiter   *ratelimit.Limiter
	searchLimiter   *ratelimit.Limiter
	appScheduler    *scheduler.Scheduler
	queueWorker     *scheduler.QueueWorker
	importService   *importer.Service
	searchExecutor  *searchagent.Executor
	pipelineService *pipeline.Service
)

func main() {
	// Load configuration
	configPath := getEnv("CONFIG_PATH", "/app/config/portal_config.yaml")
	var err error
	appConfig, err = config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}

	// Initialize database based on configuration
	dbType := appConfig.Database.Type
	if dbType == "" {
		dbType = getEnv("DB_TYPE", "mysql")
	}

	if dbType == "mysql" {
		log.Println("Using MySQL with GORM")
		mysqlCfg := appConfig.Database.MySQL

		// Get port as string, handle 0 as empty
		portStr := ""
		if mysqlCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", mysqlCfg.Port)
		}

		gormDB, err = database.NewGormDB(
			getEnvOrConfig(mysqlCfg.Host, "DB_HOST", "mysql"),
			getEnvOrConfig(portStr, "DB_PORT", "3306"),
			getEnvOrConfig(mysqlCfg.User, "DB_USER", "survey_user"),
			getEnvOrConfig(mysqlCfg.Password, "DB_PASSWORD", "survey_pass"),
			getEnvOrConfig(mysqlCfg.Database, "DB_NAME", "survey_db"),
		)
		if err != nil {
			log.Fatalf("Failed to connect to MySQL: %v", err)
		}
		defer gormDB.Close()

		// Initialize schema with GORM AutoMigrate
		if err := gormDB.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	} else {
		log.Println("Using PostgreSQL (legacy store: imports, consolidated data and exports)")
		pgCfg := appConfig.Database.Postgres

		portStr := ""
		if pgCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", pgCfg.Port)
		}

		db, err = database.NewDB(
			getEnvOrConfig(pgCfg.Host, "DB_HOST", "db"),
			getEnvOrConfig(portStr, "DB_PORT", "5432"),
			getEnvOrConfig(pgCfg.User, "DB_USER", "survey_user"),
			getEnvOrConfig(pgCfg.Password, "DB_PASSWORD", "survey_pass"),
			getEnvOrConfig(pgCfg.Database, "DB_NAME", "survey_db"),
			pgCfg.SSLMode,
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	}

	// Initialize Meilisearch using config
	meilisearchHost := appConfig.Search.Meilisearch.Host
	if meilisearchHost == "" {
		meilisearchHost = getEnv("MEILISEARCH_HOST", "http://meilisearch:7700")
	}
	meilisearchKey := appConfig.Search.Meilisearch.APIKey
	if meilisearchKey == "" {
		meilisearchKey = getEnv("MEILISEARCH_KEY", "masterKey123")
	}

	searchClient = search.NewSearchClient(meilisearchHost, meilisearchKey)

	// Wait for Meilisearch to be ready
	time.Sleep(2 * time.Second)

	if err := searchClient.InitIndex(); err != nil {
		log.Printf("Warning: Failed to initialize search index: %v", err)
	}

	// Initialize rate limiters
	uploadLimiter = ratelimit.New("uploads",
		appConfig.RateLimit.UploadsPerMinute,
		appConfig.RateLimit.UploadsPerHour,
		appConfig.RateLimit.Enabled,
	)
	searchLimiter = ratelimit.New("search_runs",
		0,
		appConfig.RateLimit.SearchRunsPerHour,
		appConfig.RateLimit.Enabled,
	)
	log.Printf("Rate limiters initialized: uploads %d/min %d/hour, search runs %d/hour (enabled: %v)",
		appConfig.RateLimit.UploadsPerMinute,
		appConfig.RateLimit.UploadsPerHour,
		appConfig.RateLimit.SearchRunsPerHour,
		appConfig.RateLimit.Enabled,
	)

	// The importer runs on whichever store is active; everything below it
	// needs the MySQL/GORM backend.
	if gormDB != nil {
		importService = importer.NewService(gormDB, appConfig.Importer, appConfig.Logging.LogImports)
	} else {
		importService = importer.NewService(db, appConfig.Importer, appConfig.Logging.LogImports)
	}

	if gormDB != nil {
		pipelineService = pipeline.NewService(gormDB, searchClient)

		agent := searchagent.NewAgent(appConfig.SearchAgent)
		searchExecutor = searchagent.NewExecutor(gormDB, agent, searchClient)

		appScheduler = scheduler.NewScheduler(gormDB, appConfig)
		if err := appScheduler.Start(); err != nil {
			log.Printf("Warning: Failed to start scheduler: %v", err)
		}
		defer appScheduler.Stop()

		queueWorker = scheduler.NewQueueWorker(gormDB, searchExecutor, appConfig.SearchAgent.GetWorkerPollInterval())
		queueWorker.Start()
		defer queueWorker.Stop()
		log.Println("Queue worker started")
	}

	// Setup Gin router
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	// Routes
	r.GET("/health", healthCheck)
	r.GET("/api/properties", getProperties)

	// Upload routes with rate limiting
	r.POST("/api/data/aiq", rateLimitMiddleware(uploadLimiter), uploadAIQ)
	r.POST("/api/data/rediq", rateLimitMiddleware(uploadLimiter), uploadRedIQ)

	// Consolidated data and import history
	r.GET("/api/data/consolidated", getConsolidatedData)
	r.GET("/api/data/imports", getImportHistory)
	r.GET("/api/data/imports/:id", getImport)
	r.PUT("/api/floor-plans/:id", updateFloorPlan)

	// Export routes
	r.GET("/api/export/excel", exportExcel)
	r.GET("/api/export/csv", exportCSV)

	// Rate limiter stats endpoint
	r.GET("/api/ratelimit/stats", getRateLimitStats)

	// Queue worker stats endpoint
	r.GET("/api/queue/stats", getQueueStats)

	// Search-engine routes (Meilisearch over acquisition results)
	r.GET("/api/search", searchIndexedResults)
	r.GET("/api/filter", filterIndexedResults)
	r.POST("/api/search/reindex", reindexAllResults)

	// Report and property-search API routes (MySQL only)
	if gormDB != nil {
		reportHandler := handlers.NewReportHandler(gormDB)
		reports := r.Group("/api/reports")
		{
			reports.POST("", reportHandler.Create)
			reports.GET("", reportHandler.List)
			reports.GET("/:id", reportHandler.Get)
			reports.PUT("/:id", reportHandler.Update)
			reports.PUT("/:id/status", reportHandler.SetStatus)
			reports.DELETE("/:id", reportHandler.Delete)
		}

		searchHandler := handlers.NewSearchHandler(gormDB, searchExecutor, pipelineService, searchLimiter, searchClient)
		searches := r.Group("/api/searches")
		{
			searches.POST("", searchHandler.Create)
			searches.GET("", searchHandler.List)
			searches.GET("/:id", searchHandler.Get)
			searches.POST("/:id/execute", searchHandler.Execute)
			searches.DELETE("/:id", searchHandler.Delete)
		}
		r.PUT("/api/search-results/:id", searchHandler.UpdateResult)
		r.GET("/api/search-results/changes", searchHandler.RecentChanges)

		adminHandler := handlers.NewAdminHandler(gormDB.DB(), appScheduler)
		admin := r.Group("/api/admin")
		{
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/activity", adminHandler.GetRecentActivity)
			admin.POST("/searches/trigger", adminHandler.TriggerRecurringRun)
			admin.POST("/cleanup/run", adminHandler.RunCleanup)
			admin.GET("/cleanup/logs", adminHandler.GetDeleteLogs)
		}

		log.Println("Report, search and admin API routes registered")
	}

	port := getEnv("PORT", "8084")
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

// rateLimitMiddleware rejects requests over the limiter's windows
func rateLimitMiddleware(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// uploadRequest is the JSON body for both upload endpoints. The file arrives
// base64-encoded, matching how the web client reads it.
type uploadRequest struct {
	FileName            string `json:"file_name" binding:"required"`
	FileData            string `json:"file_data" binding:"required"`
	SubjectPropertyName string `json:"subject_property_name"`
	ReportID            *uint  `json:"report_id"`
}

// decodeUpload validates the shared upload fields and returns the raw bytes
func decodeUpload(c *gin.Context) (*uploadRequest, []byte, bool) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}

	data, err := base64.StdEncoding.DecodeString(req.FileData)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_data is not valid base64"})
		return nil, nil, false
	}

	if int64(len(data)) > appConfig.Importer.MaxFileSizeBytes() {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("file exceeds the %dMB limit", appConfig.Importer.MaxFileSizeMB),
		})
		return nil, nil, false
	}

	// When the upload belongs to a report, the report must exist, and its
	// subject property fills in for an omitted subject name.
	if req.ReportID != nil {
		if gormDB == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Report-scoped uploads require the MySQL/GORM backend"})
			return nil, nil, false
		}
		report, err := gormDB.GetReportByID(*req.ReportID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return nil, nil, false
		}
		if req.SubjectPropertyName == "" {
			req.SubjectPropertyName = report.SubjectPropertyName
		}
	}

	return &req, data, true
}

func uploadAIQ(c *gin.Context) {
	req, data, ok := decodeUpload(c)
	if !ok {
		return
	}

	summary, err := importService.ImportAIQ(req.FileName, data, req.SubjectPropertyName, req.ReportID)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	attachToReport(req.ReportID, summary.ImportID, models.ImportSourceAIQ)
	c.JSON(http.StatusOK, summary)
}

func uploadRedIQ(c *gin.Context) {
	req, data, ok := decodeUpload(c)
	if !ok {
		return
	}

	if req.SubjectPropertyName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject_property_name is required"})
		return
	}

	summary, err := importService.ImportRedIQ(req.FileName, data, req.SubjectPropertyName, req.ReportID)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	attachToReport(req.ReportID, summary.ImportID, models.ImportSourceRedIQ)
	c.JSON(http.StatusOK, summary)
}

func attachToReport(reportID *uint, importID uint, source models.ImportSource) {
	if reportID == nil {
		return
	}
	if err := gormDB.AttachImportToReport(*reportID, importID, source); err != nil {
		log.Printf("Warning: failed to attach import %d to report %d: %v", importID, *reportID, err)
	}
}

// consolidatedRows fetches the merged view from whichever store is active
func consolidatedRows(c *gin.Context) ([]models.ConsolidatedRow, bool) {
	var reportID *uint
	if idStr := c.Query("report_id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report_id"})
			return nil, false
		}
		u := uint(id)
		reportID = &u
	}

	var rows []models.ConsolidatedRow
	var err error
	if gormDB != nil {
		rows, err = gormDB.GetConsolidatedRows(reportID)
	} else {
		rows, err = db.GetConsolidatedRows(reportID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return rows, true
}

func getConsolidatedData(c *gin.Context) {
	rows, ok := consolidatedRows(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rows":  rows,
		"count": len(rows),
	})
}

func getImportHistory(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "50")
	limit, _ := strconv.Atoi(limitStr)

	var imports []models.DataImport
	var err error
	if gormDB != nil {
		imports, err = gormDB.GetImportHistory(limit)
	} else {
		imports, err = db.GetImportHistory(limit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imports": imports,
		"count":   len(imports),
	})
}

func getImport(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var imp *models.DataImport
	if gormDB != nil {
		imp, err = gormDB.GetImportByID(uint(id))
	} else {
		imp, err = db.GetImportByID(uint(id))
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "import not found"})
		return
	}

	c.JSON(http.StatusOK, imp)
}

func getProperties(c *gin.Context) {
	var properties []models.Property
	var err error
	if gormDB != nil {
		properties, err = gormDB.GetProperties()
	} else {
		properties, err = db.GetProperties()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": properties,
		"count":      len(properties),
	})
}

func updateFloorPlan(c *gin.Context) {
	if gormDB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Floor plan updates require the MySQL/GORM backend"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		BrokerRent    *float64 `json:"broker_rent"`
		ManualAmcRent *float64 `json:"manual_amc_rent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fp, err := gormDB.UpdateFloorPlanOverlay(uint(id), req.BrokerRent, req.ManualAmcRent)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "floor plan not found"})
		return
	}

	c.JSON(http.StatusOK, fp)
}

// subjectNameFor resolves the subject property name for an export: the
// report's configured subject when scoped, otherwise the first subject row.
func subjectNameFor(c *gin.Context, rows []models.ConsolidatedRow) string {
	if idStr := c.Query("report_id"); idStr != "" && gormDB != nil {
		if id, err := strconv.ParseUint(idStr, 10, 32); err == nil {
			if report, err := gormDB.GetReportByID(uint(id)); err == nil {
				return report.SubjectPropertyName
			}
		}
	}
	for _, r := range rows {
		if r.IsSubject {
			return r.PropertyName
		}
	}
	return ""
}

func exportExcel(c *gin.Context) {
	rows, ok := consolidatedRows(c)
	if !ok {
		return
	}

	buf, err := excel.BuildWorkbook(rows, subjectNameFor(c, rows))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file_name":    excel.ExportFileName("xlsx"),
		"file_data":    base64.StdEncoding.EncodeToString(buf),
		"record_count": len(rows),
	})
}

func exportCSV(c *gin.Context) {
	rows, ok := consolidatedRows(c)
	if !ok {
		return
	}

	csv := excel.BuildCSV(rows)

	c.JSON(http.StatusOK, gin.H{
		"file_name":    excel.ExportFileName("csv"),
		"file_data":    base64.StdEncoding.EncodeToString([]byte(csv)),
		"record_count": len(rows),
	})
}

func getRateLimitStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"uploads":     uploadLimiter.GetStats(),
		"search_runs": searchLimiter.GetStats(),
	})
}

func getQueueStats(c *gin.Context) {
	if queueWorker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Queue worker requires the MySQL/GORM backend"})
		return
	}
	c.JSON(http.StatusOK, queueWorker.GetQueueStats())
}

func searchIndexedResults(c *gin.Context) {
	query := c.Query("q")
	limitStr := c.DefaultQuery("limit", "20")
	limit, _ := strconv.ParseInt(limitStr, 10, 64)

	results, err := searchClient.Search(query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"count":   len(results),
	})
}

func filterIndexedResults(c *gin.Context) {
	params := search.FilterParams{
		Query:        c.Query("q"),
		UrgencyLevel: c.Query("urgency"),
		Status:       c.Query("status"),
		SortBy:       c.Query("sort"),
	}

	if minUnitsStr := c.Query("min_units"); minUnitsStr != "" {
		if minUnits, parseErr := strconv.Atoi(minUnitsStr); parseErr == nil {
			params.MinUnits = &minUnits
		}
	}
	if maxUnitsStr := c.Query("max_units"); maxUnitsStr != "" {
		if maxUnits, parseErr := strconv.Atoi(maxUnitsStr); parseErr == nil {
			params.MaxUnits = &maxUnits
		}
	}
	if minScoreStr := c.Query("min_score"); minScoreStr != "" {
		if minScore, parseErr := strconv.Atoi(minScoreStr); parseErr == nil {
			params.MinScore = &minScore
		}
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, parseErr := strconv.ParseInt(limitStr, 10, 64); parseErr == nil {
			params.Limit = limit
		}
	}

	results, err := searchClient.FilterSearch(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"count":   len(results),
	})
}

func reindexAllResults(c *gin.Context) {
	if gormDB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Reindexing requires the MySQL/GORM backend"})
		return
	}

	results, err := gormDB.GetAllResults()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := searchClient.IndexResults(results); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"indexed": len(results),
	})
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvOrConfig prefers the config value, then the environment, then the
// fallback
func getEnvOrConfig(configValue, envKey, fallback string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, fallback)
}
