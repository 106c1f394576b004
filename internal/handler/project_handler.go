package handler

import (
	"net/http"
	"strconv"
	"time"

	"timetrack-service/internal/model"
	"timetrack-service/pkg/database"
	"timetrack-service/pkg/logger"
	"timetrack-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProjectRequest defines the structure for project creation requests
type ProjectRequest struct {
	Code                  string           `json:"code"`
	RequirementCode       string           `json:"requirement_code"`
	Name                  string           `json:"name"`
	ApprovedManDays       *decimal.Decimal `json:"approved_man_days"`
	DefaultAccountGroupID *uint            `json:"default_account_group_id"`
	DefaultWorkCategoryID *uint            `json:"default_work_category_id"`
	Description           string           `json:"description"`
	Status                string           `json:"status"`
	Color                 string           `json:"color"`
}

// ProjectPatch carries the optional fields of a partial update. Nil means
// "leave unchanged".
type ProjectPatch struct {
	Code                  *string          `json:"code"`
	RequirementCode       *string          `json:"requirement_code"`
	Name                  *string          `json:"name"`
	ApprovedManDays       *decimal.Decimal `json:"approved_man_days"`
	DefaultAccountGroupID *uint            `json:"default_account_group_id"`
	DefaultWorkCategoryID *uint            `json:"default_work_category_id"`
	Description           *string          `json:"description"`
	Status                *string          `json:"status"`
	Color                 *string          `json:"color"`
}

func (p *ProjectPatch) apply(project *model.Project) {
	if p.Code != nil {
		project.Code = *p.Code
	}
	if p.RequirementCode != nil {
		project.RequirementCode = *p.RequirementCode
	}
	if p.Name != nil {
		project.Name = *p.Name
	}
	if p.ApprovedManDays != nil {
		project.ApprovedManDays = p.ApprovedManDays
	}
	if p.DefaultAccountGroupID != nil {
		project.DefaultAccountGroupID = p.DefaultAccountGroupID
	}
	if p.DefaultWorkCategoryID != nil {
		project.DefaultWorkCategoryID = p.DefaultWorkCategoryID
	}
	if p.Description != nil {
		project.Description = *p.Description
	}
	if p.Status != nil {
		project.Status = *p.Status
	}
	if p.Color != nil {
		project.Color = *p.Color
	}
}

// CreateProject handles creating a new project
func CreateProject(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new project")

	var req ProjectRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	if req.Code == "" || req.RequirementCode == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "code, requirement_code and name are required",
		})
	}
	if req.ApprovedManDays != nil && req.ApprovedManDays.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "approved_man_days must not be negative",
		})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	// Check if an active project with this code already exists
	var count int64
	database.GetDB().Model(&model.Project{}).Where("code = ?", req.Code).Count(&count)
	if count > 0 {
		log.Warn("Project with this code already exists", zap.String("code", req.Code))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Project with code '" + req.Code + "' already exists",
		})
	}

	project := model.Project{
		Code:                  req.Code,
		RequirementCode:       req.RequirementCode,
		Name:                  req.Name,
		ApprovedManDays:       req.ApprovedManDays,
		DefaultAccountGroupID: req.DefaultAccountGroupID,
		DefaultWorkCategoryID: req.DefaultWorkCategoryID,
		Description:           req.Description,
		Status:                req.Status,
		Color:                 req.Color,
	}
	if project.Status == "" {
		project.Status = "active"
	}
	if project.Color == "" {
		project.Color = "#409EFF"
	}

	result := database.GetDB().Create(&project)
	if result.Error != nil {
		log.Error("Failed to create project",
			zap.String("code", req.Code),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create project",
		})
	}

	prometheus.RecordProjectOperation("create")
	log.Info("Project created successfully",
		zap.Uint("project_id", project.ID),
		zap.String("code", project.Code))
	return c.JSON(http.StatusCreated, project)
}

// ListProjects handles retrieving all projects with optional filtering
func ListProjects(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Listing projects")

	defer prometheus.TrackDBOperation("query")(time.Now())

	db := database.GetDB()
	query := db.Model(&model.Project{})

	// Filter by status if specified
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
		log.Info("Filtering projects by status", zap.String("status", status))
	}

	// Include soft-deleted projects only when asked
	if include, err := strconv.ParseBool(c.QueryParam("include_deleted")); err == nil && include {
		query = query.Unscoped()
	}

	var total int64
	query.Count(&total)

	skip, limit := pagination(c)
	var projects []model.Project
	result := query.Offset(skip).Limit(limit).Find(&projects)
	if result.Error != nil {
		log.Error("Failed to list projects", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve projects",
		})
	}

	log.Info("Projects retrieved successfully", zap.Int("count", len(projects)))
	return c.JSON(http.StatusOK, echo.Map{
		"items": projects,
		"total": total,
	})
}

// GetProject handles retrieving a single project by ID
func GetProject(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Getting project by ID", zap.String("project_id", id))

	defer prometheus.TrackDBOperation("query")(time.Now())

	var project model.Project
	result := database.GetDB().First(&project, id)
	if result.Error != nil {
		log.Error("Project not found",
			zap.String("project_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Project with id " + id + " not found",
		})
	}

	return c.JSON(http.StatusOK, project)
}

// UpdateProject handles partial updates of an existing project
func UpdateProject(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Updating project", zap.String("project_id", id))

	var patch ProjectPatch
	if err := c.Bind(&patch); err != nil {
		log.Error("Invalid request data",
			zap.String("project_id", id),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var project model.Project
	result := database.GetDB().First(&project, id)
	if result.Error != nil {
		log.Error("Project not found for update",
			zap.String("project_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Project with id " + id + " not found",
		})
	}

	// Reject duplicate codes among active projects
	if patch.Code != nil && *patch.Code != project.Code {
		var count int64
		database.GetDB().Model(&model.Project{}).
			Where("code = ? AND id != ?", *patch.Code, project.ID).Count(&count)
		if count > 0 {
			log.Warn("Project with this code already exists", zap.String("code", *patch.Code))
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "Project with code '" + *patch.Code + "' already exists",
			})
		}
	}
	if patch.ApprovedManDays != nil && patch.ApprovedManDays.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "approved_man_days must not be negative",
		})
	}

	patch.apply(&project)

	result = database.GetDB().Save(&project)
	if result.Error != nil {
		log.Error("Failed to update project",
			zap.String("project_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update project",
		})
	}

	prometheus.RecordProjectOperation("update")
	log.Info("Project updated successfully",
		zap.String("project_id", id),
		zap.String("code", project.Code))
	return c.JSON(http.StatusOK, project)
}

// DeleteProject handles deleting a project (soft delete)
func DeleteProject(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Deleting project", zap.String("project_id", id))

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := database.GetDB().Delete(&model.Project{}, id)
	if result.Error != nil {
		log.Error("Failed to delete project",
			zap.String("project_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete project",
		})
	}

	if result.RowsAffected == 0 {
		log.Warn("Project not found for deletion",
			zap.String("project_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Project with id " + id + " not found",
		})
	}

	prometheus.RecordProjectOperation("delete")
	log.Info("Project deleted successfully", zap.String("project_id", id))
	return c.NoContent(http.StatusNoContent)
}

// pagination reads skip/limit query parameters with the API defaults.
func pagination(c echo.Context) (int, int) {
	skip := 0
	limit := 100
	if v, err := strconv.Atoi(c.QueryParam("skip")); err == nil && v >= 0 {
		skip = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	return skip, limit
}
