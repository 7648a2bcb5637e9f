package handlers

import (
	"net/http"
	"time"

	"github.com/collabdeck-dev/collabdeck/db"
	"github.com/collabdeck-dev/collabdeck/internal/logging"
	"github.com/collabdeck-dev/collabdeck/internal/models"
	"github.com/collabdeck-dev/collabdeck/internal/types"
	"github.com/collabdeck-dev/collabdeck/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateMilestoneRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateMilestoneRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status" binding:"omitempty,oneof=planned active completed"`
	DueDate     *time.Time `json:"due_date"`
}

type MilestoneResponse struct {
	ID          uint       `json:"id"`
	ProjectID   uint       `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	IsActive    bool       `json:"is_active"`
	Overdue     bool       `json:"overdue"`
	DueDate     *time.Time `json:"due_date"`
}

func milestoneResponse(m models.Milestone) MilestoneResponse {
	return MilestoneResponse{
		ID:          m.ID,
		ProjectID:   m.ProjectID,
		Title:       m.Title,
		Description: m.Description,
		Status:      m.Status,
		IsActive:    m.IsActive,
		Overdue:     m.Overdue,
		DueDate:     m.DueDate,
	}
}

// requireMember resolves the caller's membership or rejects with 404 to
// avoid leaking project existence.
func requireMember(ctx *gin.Context) (projectID uint, membership models.ProjectMembership, ok bool) {
	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, membership, false
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, membership, false
	}

	membership, err = getMembership(projectID, userID)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return 0, membership, false
	}

	return projectID, membership, true
}

func CreateMilestone(ctx *gin.Context) {
	projectID, membership, ok := requireMember(ctx)

	if !ok {
		return
	}

	if membership.Role == types.RoleMentor {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Mentors cannot create milestones"})
		return
	}

	var body CreateMilestoneRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	milestone := models.Milestone{
		ProjectID:   projectID,
		Title:       body.Title,
		Description: body.Description,
		Status:      types.MilestonePlanned,
		DueDate:     body.DueDate,
	}

	if err := db.DB.Create(&milestone).Error; err != nil {
		logging.Logger.Errorf("Failed to create milestone in project %d: %v", projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create milestone"})
		return
	}

	ctx.JSON(http.StatusCreated, milestoneResponse(milestone))
}

func ListMilestones(ctx *gin.Context) {
	projectID, _, ok := requireMember(ctx)

	if !ok {
		return
	}

	query := db.DB.Where("project_id = ?", projectID)

	if status := ctx.Query("status"); status != "" {
		if !types.ValidMilestoneStatus(status) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		query = query.Where("status = ?", status)
	}

	var milestones []models.Milestone

	if err := query.Order("due_date ASC NULLS LAST, created_at ASC").Find(&milestones).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve milestones"})
		return
	}

	response := make([]MilestoneResponse, 0, len(milestones))

	for _, m := range milestones {
		response = append(response, milestoneResponse(m))
	}

	ctx.JSON(http.StatusOK, response)
}

func UpdateMilestone(ctx *gin.Context) {
	projectID, membership, ok := requireMember(ctx)

	if !ok {
		return
	}

	if membership.Role == types.RoleMentor {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Mentors cannot edit milestones"})
		return
	}

	milestoneID, err := utils.GetIDParam(ctx, "milestone_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body UpdateMilestoneRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var milestone models.Milestone

	if err := db.DB.Where("id = ? AND project_id = ?", milestoneID, projectID).First(&milestone).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Milestone not found"})
		return
	}

	// Omitted fields keep their current value
	if body.Title != "" {
		milestone.Title = body.Title
	}

	if body.Description != nil {
		milestone.Description = *body.Description
	}

	if body.DueDate != nil {
		milestone.DueDate = body.DueDate
	}

	if body.Status != "" {
		milestone.Status = body.Status

		// A completed milestone is no longer the active one
		if body.Status == types.MilestoneCompleted {
			milestone.IsActive = false
		}
	}

	if err := db.DB.Save(&milestone).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update milestone"})
		return
	}

	ctx.JSON(http.StatusOK, milestoneResponse(milestone))
}

// ActivateMilestone marks one milestone active and deactivates every other
// milestone of the project in the same transaction.
func ActivateMilestone(ctx *gin.Context) {
	projectID, membership, ok := requireMember(ctx)

	if !ok {
		return
	}

	if membership.Role == types.RoleMentor {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Mentors cannot activate milestones"})
		return
	}

	milestoneID, err := utils.GetIDParam(ctx, "milestone_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var milestone models.Milestone

	if err := db.DB.Where("id = ? AND project_id = ?", milestoneID, projectID).First(&milestone).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Milestone not found"})
		return
	}

	if milestone.Status == types.MilestoneCompleted {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Completed milestones cannot be activated"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Milestone{}).
			Where("project_id = ? AND id != ?", projectID, milestone.ID).
			Updates(map[string]interface{}{"is_active": false}).Error; err != nil {
			return err
		}

		return tx.Model(&models.Milestone{}).
			Where("id = ?", milestone.ID).
			Updates(map[string]interface{}{"is_active": true, "status": types.MilestoneActive}).Error
	})

	if err != nil {
		logging.Logger.Errorf("Failed to activate milestone %d: %v", milestone.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate milestone"})
		return
	}

	NotifyProject(projectID, "milestone_activated", gin.H{"milestone_id": milestone.ID})

	ctx.JSON(http.StatusOK, gin.H{"message": "Milestone activated successfully", "milestone_id": milestone.ID})
}

func DeleteMilestone(ctx *gin.Context) {
	projectID, membership, ok := requireMember(ctx)

	if !ok {
		return
	}

	if membership.Role == types.RoleMentor {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Mentors cannot delete milestones"})
		return
	}

	milestoneID, err := utils.GetIDParam(ctx, "milestone_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var milestone models.Milestone

	if err := db.DB.Where("id = ? AND project_id = ?", milestoneID, projectID).First(&milestone).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Milestone not found"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		// Tasks keep living, detached from the deleted milestone
		if err := tx.Model(&models.Task{}).
			Where("milestone_id = ?", milestone.ID).
			Update("milestone_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&milestone).Error
	})

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete milestone"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
