package handler

import (
	"net/http"
	"time"

	"timetrack-service/internal/service"
	"timetrack-service/pkg/database"
	"timetrack-service/pkg/logger"
	"timetrack-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// GetProjectStats handles retrieving the approved-hours statistics of one project
func GetProjectStats(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Calculating project stats", zap.String("project_id", id))

	var projectID uint
	if err := echo.PathParamsBinder(c).Uint("id", &projectID).BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid project id",
		})
	}

	defer prometheus.TrackStatsCalculation()(time.Now())

	store := service.NewStore(database.GetDB())
	stats, err := service.CalculateProjectStats(store, projectID)
	if err != nil {
		log.Error("Failed to calculate project stats",
			zap.String("project_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to calculate project stats",
		})
	}
	if stats == nil {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Project with id " + id + " not found",
		})
	}

	return c.JSON(http.StatusOK, stats)
}

// GetAllProjectStats handles retrieving statistics for every active project
// that has time entries
func GetAllProjectStats(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Calculating stats for all projects")

	defer prometheus.TrackStatsCalculation()(time.Now())

	store := service.NewStore(database.GetDB())
	stats, err := service.CalculateAllProjectStats(store)
	if err != nil {
		log.Error("Failed to calculate project stats", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to calculate project stats",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items": stats,
		"total": len(stats),
	})
}
