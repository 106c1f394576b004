package handler

import (
	"errors"
	"net/http"
	"strings"

	"timetrack-service/internal/service"
	"timetrack-service/pkg/config"
	"timetrack-service/pkg/database"
	"timetrack-service/pkg/logger"
	"timetrack-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var (
	tcsConfig    *config.TCSConfig
	tcsAutomator service.Automator
)

// InitTCS wires the TCS handlers with their configuration and the
// form-filling actor client.
func InitTCS(cfg *config.TCSConfig, actor service.Automator) {
	tcsConfig = cfg
	tcsAutomator = actor
}

// TCSAutoFillRequest defines the structure for auto-fill requests. DryRun and
// Headless are optional and fall back to the configured defaults.
type TCSAutoFillRequest struct {
	Date     string `json:"date"`
	DryRun   *bool  `json:"dry_run"`
	Headless *bool  `json:"headless"`
}

// FormatTCS handles rendering one date's entries into the TCS text layout
func FormatTCS(c echo.Context) error {
	log := logger.FromContext(c)

	target, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid date format, expected YYYY-MM-DD",
		})
	}

	store := service.NewStore(database.GetDB())
	entries, err := store.EntriesForDate(target)
	if err != nil {
		log.Error("Failed to load time entries", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve time entries",
		})
	}
	if len(entries) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "找不到 " + c.QueryParam("date") + " 的工時記錄",
		})
	}

	result, err := service.FormatDateForTCS(store, entries, target)
	if err != nil {
		log.Error("Failed to format entries",
			zap.String("date", c.QueryParam("date")),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to format time entries",
		})
	}

	prometheus.RecordTCSFormat()
	return c.JSON(http.StatusOK, result)
}

// FormatTCSRange handles rendering an inclusive date range into the TCS text
// layout
func FormatTCSRange(c echo.Context) error {
	log := logger.FromContext(c)

	start, err := parseDate(c.QueryParam("start_date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid start_date format, expected YYYY-MM-DD",
		})
	}
	end, err := parseDate(c.QueryParam("end_date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid end_date format, expected YYYY-MM-DD",
		})
	}
	if end.Before(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "end_date must not be earlier than start_date",
		})
	}

	store := service.NewStore(database.GetDB())
	result, err := service.FormatDateRangeForTCS(store, start, end)
	if err != nil {
		log.Error("Failed to format date range",
			zap.String("start_date", c.QueryParam("start_date")),
			zap.String("end_date", c.QueryParam("end_date")),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to format time entries",
		})
	}
	if result == nil {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "找不到 " + c.QueryParam("start_date") + " 到 " +
				c.QueryParam("end_date") + " 的工時記錄",
		})
	}

	prometheus.RecordTCSFormat()
	return c.JSON(http.StatusOK, result)
}

// AutoFillTCS handles driving the form-filling actor for one date's entries
func AutoFillTCS(c echo.Context) error {
	log := logger.FromContext(c)

	var req TCSAutoFillRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	target, err := parseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid date format, expected YYYY-MM-DD",
		})
	}

	dryRun := tcsConfig.DryRunDefault
	if req.DryRun != nil {
		dryRun = *req.DryRun
	}
	headless := tcsConfig.Headless
	if req.Headless != nil {
		headless = *req.Headless
	}

	log.Info("Starting TCS auto-fill",
		zap.String("date", req.Date),
		zap.Bool("dry_run", dryRun),
		zap.Bool("headless", headless))

	store := service.NewStore(database.GetDB())
	result, err := service.AutoFillTCS(store, tcsAutomator, headless, target, dryRun, log)
	if err != nil {
		return tcsAutoFillError(c, log, req.Date, dryRun, err)
	}

	prometheus.RecordTCSAutoFill("success", dryRun)
	log.Info("TCS auto-fill finished",
		zap.String("date", req.Date),
		zap.Int("filled_count", result.FilledCount),
		zap.Bool("dry_run", result.DryRun))
	return c.JSON(http.StatusOK, result)
}

// tcsAutoFillError maps the service error taxonomy onto HTTP responses.
func tcsAutoFillError(c echo.Context, log *zap.Logger, date string, dryRun bool, err error) error {
	var refErr *service.ReferenceError
	var valErr *service.ValidationError
	var actErr *service.ActorError

	switch {
	case errors.Is(err, service.ErrNoEntries):
		prometheus.RecordTCSAutoFill("not_found", dryRun)
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "找不到 " + date + " 的工時記錄",
		})
	case errors.As(err, &valErr):
		prometheus.RecordTCSAutoFill("validation_failed", dryRun)
		log.Warn("TCS auto-fill validation failed",
			zap.String("date", date),
			zap.Strings("errors", valErr.Errors))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "資料驗證失敗: " + strings.Join(valErr.Errors, "; "),
		})
	case errors.As(err, &refErr):
		prometheus.RecordTCSAutoFill("reference_error", dryRun)
		log.Warn("TCS auto-fill reference error",
			zap.String("date", date),
			zap.Error(refErr))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "資料錯誤: " + refErr.Error(),
		})
	case errors.As(err, &actErr):
		prometheus.RecordTCSAutoFill("actor_failed", dryRun)
		log.Error("TCS actor failed",
			zap.String("date", date),
			zap.Error(actErr))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "自動填寫失敗: " + actErr.Error(),
		})
	default:
		prometheus.RecordTCSAutoFill("error", dryRun)
		log.Error("TCS auto-fill failed",
			zap.String("date", date),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to auto-fill TCS",
		})
	}
}
