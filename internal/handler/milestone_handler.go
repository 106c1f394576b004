package handler

import (
	"net/http"
	"time"

	"timetrack-service/internal/model"
	"timetrack-service/pkg/database"
	"timetrack-service/pkg/logger"
	"timetrack-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// MilestoneRequest defines the structure for milestone creation requests
type MilestoneRequest struct {
	Name         string `json:"name"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
}

// MilestonePatch carries the optional fields of a partial update.
type MilestonePatch struct {
	Name         *string `json:"name"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	Description  *string `json:"description"`
	DisplayOrder *int    `json:"display_order"`
}

// validMilestoneRange reports whether the milestone period is well formed.
// The end date must not precede the start date.
func validMilestoneRange(start, end time.Time) bool {
	return !end.Before(start)
}

// CreateMilestone handles creating a milestone under a project
func CreateMilestone(c echo.Context) error {
	log := logger.FromContext(c)
	projectID := c.Param("id")
	log.Info("Creating new milestone", zap.String("project_id", projectID))

	defer prometheus.TrackDBOperation("insert")(time.Now())

	var project model.Project
	if err := database.GetDB().First(&project, projectID).Error; err != nil {
		log.Error("Project not found for milestone",
			zap.String("project_id", projectID),
			zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Project with id " + projectID + " not found",
		})
	}

	var req MilestoneRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "name is required",
		})
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid start_date format, expected YYYY-MM-DD",
		})
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid end_date format, expected YYYY-MM-DD",
		})
	}
	if !validMilestoneRange(start, end) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "end_date must not be earlier than start_date",
		})
	}

	milestone := model.Milestone{
		ProjectID:    project.ID,
		Name:         req.Name,
		StartDate:    start,
		EndDate:      end,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
	}

	result := database.GetDB().Create(&milestone)
	if result.Error != nil {
		log.Error("Failed to create milestone",
			zap.String("project_id", projectID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create milestone",
		})
	}

	log.Info("Milestone created successfully",
		zap.Uint("milestone_id", milestone.ID),
		zap.Uint("project_id", milestone.ProjectID))
	return c.JSON(http.StatusCreated, milestone)
}

// ListMilestones handles retrieving the milestones of a project
func ListMilestones(c echo.Context) error {
	log := logger.FromContext(c)
	projectID := c.Param("id")

	defer prometheus.TrackDBOperation("query")(time.Now())

	var project model.Project
	if err := database.GetDB().First(&project, projectID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Project with id " + projectID + " not found",
		})
	}

	var milestones []model.Milestone
	result := database.GetDB().Where("project_id = ?", project.ID).
		Order("start_date ASC").Order("display_order ASC").Find(&milestones)
	if result.Error != nil {
		log.Error("Failed to list milestones",
			zap.String("project_id", projectID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve milestones",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items": milestones,
		"total": int64(len(milestones)),
	})
}

// GetMilestone handles retrieving a single milestone by ID
func GetMilestone(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	defer prometheus.TrackDBOperation("query")(time.Now())

	var milestone model.Milestone
	result := database.GetDB().First(&milestone, id)
	if result.Error != nil {
		log.Error("Milestone not found",
			zap.String("milestone_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Milestone with id " + id + " not found",
		})
	}

	return c.JSON(http.StatusOK, milestone)
}

// UpdateMilestone handles partial updates of a milestone. A supplied bound is
// checked against the stored counterpart so the period stays well formed.
func UpdateMilestone(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Updating milestone", zap.String("milestone_id", id))

	var patch MilestonePatch
	if err := c.Bind(&patch); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var milestone model.Milestone
	result := database.GetDB().First(&milestone, id)
	if result.Error != nil {
		log.Error("Milestone not found for update",
			zap.String("milestone_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Milestone with id " + id + " not found",
		})
	}

	start := milestone.StartDate
	end := milestone.EndDate
	if patch.StartDate != nil {
		d, err := parseDate(*patch.StartDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "Invalid start_date format, expected YYYY-MM-DD",
			})
		}
		start = d
	}
	if patch.EndDate != nil {
		d, err := parseDate(*patch.EndDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "Invalid end_date format, expected YYYY-MM-DD",
			})
		}
		end = d
	}
	if !validMilestoneRange(start, end) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "end_date must not be earlier than start_date",
		})
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "name is required",
			})
		}
		milestone.Name = *patch.Name
	}
	milestone.StartDate = start
	milestone.EndDate = end
	if patch.Description != nil {
		milestone.Description = *patch.Description
	}
	if patch.DisplayOrder != nil {
		milestone.DisplayOrder = *patch.DisplayOrder
	}

	result = database.GetDB().Save(&milestone)
	if result.Error != nil {
		log.Error("Failed to update milestone",
			zap.String("milestone_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update milestone",
		})
	}

	log.Info("Milestone updated successfully", zap.String("milestone_id", id))
	return c.JSON(http.StatusOK, milestone)
}

// DeleteMilestone handles deleting a milestone
func DeleteMilestone(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Deleting milestone", zap.String("milestone_id", id))

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := database.GetDB().Delete(&model.Milestone{}, id)
	if result.Error != nil {
		log.Error("Failed to delete milestone",
			zap.String("milestone_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete milestone",
		})
	}

	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Milestone with id " + id + " not found",
		})
	}

	log.Info("Milestone deleted successfully", zap.String("milestone_id", id))
	return c.NoContent(http.StatusNoContent)
}
