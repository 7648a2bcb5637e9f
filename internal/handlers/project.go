package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/collabdeck-dev/collabdeck/db"
	"github.com/collabdeck-dev/collabdeck/internal/logging"
	"github.com/collabdeck-dev/collabdeck/internal/models"
	"github.com/collabdeck-dev/collabdeck/internal/types"
	"github.com/collabdeck-dev/collabdeck/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateProjectRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	MaxMembers  int      `json:"max_members" binding:"omitempty,min=1,max=50"`
	Skills      []string `json:"skills"`
}

type UpdateProjectRequest struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Status      string   `json:"status" binding:"omitempty,oneof=recruiting active completed archived"`
	MaxMembers  int      `json:"max_members" binding:"omitempty,min=1,max=50"`
	Skills      []string `json:"skills"`
}

type GetProjectResponse struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	MaxMembers  int      `json:"max_members"`
	OwnerID     uint     `json:"owner_id"`
	MemberCount int      `json:"member_count"`
	Skills      []string `json:"skills"`
}

type ProjectListResponse struct {
	Projects []GetProjectResponse `json:"projects"`
	Total    int64                `json:"total"`
	Limit    int                  `json:"limit"`
	Offset   int                  `json:"offset"`
}

type ProjectDetailResponse struct {
	GetProjectResponse
	Members        []MemberResponse `json:"members"`
	MilestoneCount int64            `json:"milestone_count"`
	TaskCount      int64            `json:"task_count"`
}

func projectSkillNames(projectID uint) []string {
	var projectSkills []models.ProjectSkill

	if err := db.DB.Preload("Skill").Where("project_id = ?", projectID).Find(&projectSkills).Error; err != nil {
		logging.Logger.Errorf("Failed to load skills for project %d: %v", projectID, err)
		return nil
	}

	names := make([]string, 0, len(projectSkills))
	for _, ps := range projectSkills {
		names = append(names, ps.Skill.Name)
	}

	return names
}

func buildProjectResponse(project models.Project) GetProjectResponse {
	var memberCount int64

	db.DB.Model(&models.ProjectMembership{}).Where("project_id = ?", project.ID).Count(&memberCount)

	return GetProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		MaxMembers:  project.MaxMembers,
		OwnerID:     project.OwnerID,
		MemberCount: int(memberCount),
		Skills:      projectSkillNames(project.ID),
	}
}

// replaceProjectSkills swaps the required-skill set inside the caller's
// transaction, creating catalog rows on demand.
func replaceProjectSkills(tx *gorm.DB, projectID uint, names []string) error {
	if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectSkill{}).Error; err != nil {
		return err
	}

	seen := make(map[string]bool)

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true

		skill, err := findOrCreateSkill(tx, name)
		if err != nil {
			return err
		}

		if err := tx.Create(&models.ProjectSkill{ProjectID: projectID, SkillID: skill.ID}).Error; err != nil {
			return err
		}
	}

	return nil
}

func CreateProject(ctx *gin.Context) {
	var body CreateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	maxMembers := body.MaxMembers
	if maxMembers == 0 {
		maxMembers = 5
	}

	project := models.Project{
		Name:        body.Name,
		Description: body.Description,
		Status:      types.ProjectRecruiting,
		MaxMembers:  maxMembers,
		OwnerID:     userID,
	}

	// The owner membership row is created with the project so the
	// one-owner invariant holds from the start.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		membership := models.ProjectMembership{
			UserID:    userID,
			ProjectID: project.ID,
			Role:      types.RoleOwner,
		}

		if err := tx.Create(&membership).Error; err != nil {
			return err
		}

		return replaceProjectSkills(tx, project.ID, body.Skills)
	})

	if err != nil {
		logging.Logger.Errorf("Failed to create project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	ctx.JSON(http.StatusCreated, buildProjectResponse(project))
}

func ListProjects(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	limit, offset := utils.GetPagination(ctx)

	query := db.DB.Model(&models.Project{})

	if ctx.Query("mine") == "true" {
		query = query.Joins("JOIN project_memberships ON project_memberships.project_id = projects.id AND project_memberships.deleted_at IS NULL").
			Where("project_memberships.user_id = ?", userID)
	} else {
		query = query.Where("projects.status != ?", types.ProjectArchived)
	}

	if status := ctx.Query("status"); status != "" {
		if !types.ValidProjectStatus(status) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		query = query.Where("projects.status = ?", status)
	}

	if skill := strings.TrimSpace(ctx.Query("skill")); skill != "" {
		query = query.Joins("JOIN project_skills ON project_skills.project_id = projects.id AND project_skills.deleted_at IS NULL").
			Joins("JOIN skills ON skills.id = project_skills.skill_id").
			Where("LOWER(skills.name) = LOWER(?)", skill)
	}

	if q := strings.TrimSpace(ctx.Query("q")); q != "" {
		pattern := "%" + q + "%"
		query = query.Where("LOWER(projects.name) LIKE LOWER(?) OR LOWER(projects.description) LIKE LOWER(?)", pattern, pattern)
	}

	var total int64

	if err := query.Distinct("projects.id").Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	var projects []models.Project

	if err := query.Distinct().Select("projects.*").Order("projects.created_at DESC").Limit(limit).Offset(offset).Find(&projects).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	response := ProjectListResponse{
		Projects: make([]GetProjectResponse, 0, len(projects)),
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}

	for _, project := range projects {
		response.Projects = append(response.Projects, buildProjectResponse(project))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetProject(ctx *gin.Context) {
	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	// Archived projects are only visible to their members
	if project.Status == types.ProjectArchived {
		if _, err := getMembership(project.ID, userID); err != nil {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
	}

	members, err := listProjectMembers(project.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}

	var milestoneCount, taskCount int64

	db.DB.Model(&models.Milestone{}).Where("project_id = ?", project.ID).Count(&milestoneCount)
	db.DB.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&taskCount)

	ctx.JSON(http.StatusOK, ProjectDetailResponse{
		GetProjectResponse: buildProjectResponse(project),
		Members:            members,
		MilestoneCount:     milestoneCount,
		TaskCount:          taskCount,
	})
}

func UpdateProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project models.Project

	if err := db.DB.Where("id = ? AND owner_id = ?", projectID, userID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	// Omitted fields keep their current value
	if body.Name != "" {
		project.Name = body.Name
	}

	if body.Description != nil {
		project.Description = *body.Description
	}

	if body.Status != "" {
		project.Status = body.Status
	}

	if body.MaxMembers != 0 {
		var memberCount int64
		db.DB.Model(&models.ProjectMembership{}).Where("project_id = ?", project.ID).Count(&memberCount)

		if int64(body.MaxMembers) < memberCount {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Max members cannot be below current member count"})
			return
		}

		project.MaxMembers = body.MaxMembers
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&project).Error; err != nil {
			return err
		}

		if body.Skills != nil {
			return replaceProjectSkills(tx, project.ID, body.Skills)
		}

		return nil
	})

	if err != nil {
		logging.Logger.Errorf("Failed to update project %d: %v", project.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	ctx.JSON(http.StatusOK, buildProjectResponse(project))
}

func DeleteProject(ctx *gin.Context) {
	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var project models.Project

	if err := db.DB.Where("id = ? AND owner_id = ?", projectID, userID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	if err := db.DB.Select("ProjectMemberships", "Milestones", "Tasks", "Applications", "Bookmarks", "RequiredSkills").Delete(&project).Error; err != nil {
		logging.Logger.Errorf("Failed to delete project %d: %v", project.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
