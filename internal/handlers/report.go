package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"market-survey-portal/internal/database"
	"market-survey-portal/internal/models"
)

// ReportHandler handles market report CRUD
type ReportHandler struct {
	db *database.GormDB
}

// NewReportHandler creates a new report handler
func NewReportHandler(db *database.GormDB) *ReportHandler {
	return &ReportHandler{db: db}
}

// Create creates a new draft report
func (h *ReportHandler) Create(c *gin.Context) {
	var req struct {
		Name                string `json:"name" binding:"required"`
		SubjectPropertyName string `json:"subject_property_name" binding:"required"`
		Description         string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report := &models.MarketReport{
		Name:                req.Name,
		SubjectPropertyName: req.SubjectPropertyName,
		Description:         req.Description,
		Status:              models.ReportStatusDraft,
	}
	if err := h.db.CreateReport(report); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, report)
}

// List returns all reports with completeness flags
func (h *ReportHandler) List(c *gin.Context) {
	reports, err := h.db.ListReports()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
		"count":   len(reports),
	})
}

// Get returns a single report
func (h *ReportHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	report, err := h.db.GetReportByID(id)
	if err != nil {
		respondNotFoundOrError(c, err, "report not found")
		return
	}

	c.JSON(http.StatusOK, report)
}

// Update updates a report's editable fields
func (h *ReportHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Name                *string `json:"name"`
		SubjectPropertyName *string `json:"subject_property_name"`
		Description         *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.db.GetReportByID(id)
	if err != nil {
		respondNotFoundOrError(c, err, "report not found")
		return
	}

	if req.Name != nil {
		report.Name = *req.Name
	}
	if req.SubjectPropertyName != nil {
		report.SubjectPropertyName = *req.SubjectPropertyName
	}
	if req.Description != nil {
		report.Description = *req.Description
	}

	if err := h.db.UpdateReport(report); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// SetStatus moves a report through its lifecycle
func (h *ReportHandler) SetStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := models.ReportStatus(req.Status)
	switch status {
	case models.ReportStatusDraft, models.ReportStatusComplete, models.ReportStatusArchived:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report status"})
		return
	}

	report, err := h.db.SetReportStatus(id, status)
	if err != nil {
		respondNotFoundOrError(c, err, "report not found")
		return
	}

	c.JSON(http.StatusOK, report)
}

// Delete removes a report with its scoped floor plans and imports
func (h *ReportHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if _, err := h.db.GetReportByID(id); err != nil {
		respondNotFoundOrError(c, err, "report not found")
		return
	}

	if err := h.db.DeleteReport(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// parseIDParam reads the :id path parameter, responding 400 on garbage
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func respondNotFoundOrError(c *gin.Context, err error, msg string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
