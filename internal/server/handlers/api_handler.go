package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mbodji/fueltrack/internal/domain/models"
	"github.com/mbodji/fueltrack/internal/repository"
	"github.com/mbodji/fueltrack/internal/service/analysis"
	"github.com/mbodji/fueltrack/internal/service/backup"
	"github.com/mbodji/fueltrack/internal/service/goals"
	"github.com/mbodji/fueltrack/internal/service/logbook"
	"github.com/mbodji/fueltrack/internal/service/nutrition"
	"github.com/mbodji/fueltrack/internal/service/usage"
	"github.com/mbodji/fueltrack/pkg/clients/gemini"
)

const dateLayout = "2006-01-02"

// Maximum accepted backup payload. Backups are small JSON documents; anything
// bigger is a mistake or abuse.
const maxBackupBytes = 16 << 20

// APIHandler adapts the service layer to HTTP.
type APIHandler struct {
	analysisSvc *analysis.Service
	logbookSvc  *logbook.Service
	backupSvc   *backup.Service
	tracker     *usage.Tracker
	store       repository.Store
	logger      *zap.Logger
}

// NewAPIHandler constructs the HTTP handler adapter.
func NewAPIHandler(
	analysisSvc *analysis.Service,
	logbookSvc *logbook.Service,
	backupSvc *backup.Service,
	tracker *usage.Tracker,
	store repository.Store,
	logger *zap.Logger,
) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		analysisSvc: analysisSvc,
		logbookSvc:  logbookSvc,
		backupSvc:   backupSvc,
		tracker:     tracker,
		store:       store,
		logger:      logger,
	}
}

// Analyze runs the food analysis pipeline on a free-text description.
func (h *APIHandler) Analyze(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	result, err := h.analysisSvc.Analyze(c.Request.Context(), req.Text)
	if err != nil {
		h.respondAnalyzeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *APIHandler) respondAnalyzeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analysis.ErrEmptyInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "food description is empty"})
	case errors.Is(err, analysis.ErrQuotaExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "daily api limit reached, try again tomorrow"})
	case errors.Is(err, analysis.ErrMissingAPIKey):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": "api key not set, configure your provider in settings"})
	case errors.Is(err, analysis.ErrUnsupportedProvider):
		c.JSON(http.StatusBadRequest, gin.H{"error": "configured provider is not supported"})
	case errors.Is(err, gemini.ErrMalformedResponse):
		c.JSON(http.StatusBadGateway, gin.H{"error": "provider returned an unusable response"})
	case errors.Is(err, gemini.ErrProviderUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "estimation provider is unavailable, try again later"})
	default:
		h.logger.Error("analyze failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
	}
}

// GetDay returns the daily log together with targets and remaining budget.
func (h *APIHandler) GetDay(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}

	log, err := h.logbookSvc.Day(c.Request.Context(), date)
	if err != nil {
		h.logger.Error("failed loading daily log", zap.String("date", date), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load daily log"})
		return
	}

	targets, err := h.currentTargets(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load targets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"log":       log,
		"targets":   targets,
		"remaining": nutrition.Remaining(log.Totals, targets),
	})
}

// AddEntry appends a food entry to the date's log.
func (h *APIHandler) AddEntry(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}

	var entry models.FoodEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry payload"})
		return
	}
	if entry.ItemName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_name is required"})
		return
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	log, err := h.logbookSvc.AddEntry(c.Request.Context(), date, entry)
	if err != nil {
		h.logger.Error("failed adding entry", zap.String("date", date), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save entry"})
		return
	}

	c.JSON(http.StatusCreated, log)
}

// RemoveEntry deletes an entry by its position in the day's list.
func (h *APIHandler) RemoveEntry(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry index"})
		return
	}

	log, err := h.logbookSvc.RemoveEntry(c.Request.Context(), date, index)
	if errors.Is(err, logbook.ErrEntryNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed removing entry", zap.String("date", date), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove entry"})
		return
	}

	c.JSON(http.StatusOK, log)
}

// GetHydration returns the date's water intake.
func (h *APIHandler) GetHydration(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}

	log, err := h.logbookSvc.Hydration(c.Request.Context(), date)
	if err != nil {
		h.logger.Error("failed loading hydration", zap.String("date", date), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load hydration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": log.Date, "water_ml": log.WaterML, "goal_ml": models.DefaultWaterGoalML})
}

// AddWater increments the date's water intake.
func (h *APIHandler) AddWater(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}

	var req struct {
		AmountML float64 `json:"amount_ml" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount_ml is required"})
		return
	}

	log, err := h.logbookSvc.AddWater(c.Request.Context(), date, req.AmountML)
	if err != nil {
		h.logger.Error("failed adding water", zap.String("date", date), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update hydration"})
		return
	}

	c.JSON(http.StatusOK, log)
}

// GetSettings returns the stored settings, defaults applied.
func (h *APIHandler) GetSettings(c *gin.Context) {
	settings, err := h.store.GetSettings(c.Request.Context())
	if errors.Is(err, repository.ErrNotFound) {
		settings = models.DefaultSettings()
	} else if err != nil {
		h.logger.Error("failed loading settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}

	c.JSON(http.StatusOK, settings.WithDefaults())
}

// PutSettings replaces the settings record.
func (h *APIHandler) PutSettings(c *gin.Context) {
	var settings models.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings payload"})
		return
	}

	settings = settings.WithDefaults()
	if err := h.store.PutSettings(c.Request.Context(), settings); err != nil {
		h.logger.Error("failed saving settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// GetTargets computes the daily targets from the stored profile.
func (h *APIHandler) GetTargets(c *gin.Context) {
	targets, err := h.currentTargets(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load targets"})
		return
	}

	c.JSON(http.StatusOK, targets)
}

// GetUsage returns today's admission status for the configured provider.
func (h *APIHandler) GetUsage(c *gin.Context) {
	settings, err := h.store.GetSettings(c.Request.Context())
	if errors.Is(err, repository.ErrNotFound) {
		settings = models.DefaultSettings()
	} else if err != nil {
		h.logger.Error("failed loading settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	settings = settings.WithDefaults()

	today := time.Now().Format(dateLayout)
	status, err := h.tracker.Status(c.Request.Context(), today, settings.Provider)
	if err != nil {
		h.logger.Error("failed loading usage status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load usage status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// ExportBackup streams the full backup document.
func (h *APIHandler) ExportBackup(c *gin.Context) {
	data, err := h.backupSvc.Export(c.Request.Context())
	if err != nil {
		h.logger.Error("backup export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export backup"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="fueltrack-backup.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// ImportBackup restores state from an uploaded backup document.
func (h *APIHandler) ImportBackup(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBackupBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read backup payload"})
		return
	}

	if err := h.backupSvc.Import(c.Request.Context(), data); err != nil {
		h.logger.Error("backup import failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to restore backup"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *APIHandler) currentTargets(c *gin.Context) (models.NutritionVector, error) {
	settings, err := h.store.GetSettings(c.Request.Context())
	if errors.Is(err, repository.ErrNotFound) {
		settings = models.DefaultSettings()
	} else if err != nil {
		h.logger.Error("failed loading settings", zap.Error(err))
		return models.NutritionVector{}, err
	}
	return goals.CalculateTargets(settings.WithDefaults().Profile), nil
}

func (h *APIHandler) dateParam(c *gin.Context) (string, bool) {
	date := c.Param("date")
	if _, err := time.Parse(dateLayout, date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return "", false
	}
	return date, true
}
