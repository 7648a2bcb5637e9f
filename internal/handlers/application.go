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

type ApplyRequest struct {
	Message string `json:"message"`
}

type InviteRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message"`
}

type ResolveApplicationRequest struct {
	Action string `json:"action" binding:"required,oneof=accept reject withdraw"`
}

type ApplicationResponse struct {
	ID          uint   `json:"id"`
	UserID      uint   `json:"user_id"`
	UserName    string `json:"user_name"`
	ProjectID   uint   `json:"project_id"`
	ProjectName string `json:"project_name"`
	Direction   string `json:"direction"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

func applicationResponse(a models.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		UserName:    a.User.Name,
		ProjectID:   a.ProjectID,
		ProjectName: a.Project.Name,
		Direction:   a.Direction,
		Status:      a.Status,
		Message:     a.Message,
	}
}

// checkJoinable rejects joining when the project is not recruiting, full,
// already joined, or has an open application for the pair.
func checkJoinable(project models.Project, userID uint) (string, bool) {
	if project.Status != types.ProjectRecruiting {
		return "Project is not recruiting", false
	}

	if _, err := getMembership(project.ID, userID); err == nil {
		return "User is already a project member", false
	}

	var memberCount int64
	db.DB.Model(&models.ProjectMembership{}).Where("project_id = ?", project.ID).Count(&memberCount)

	if memberCount >= int64(project.MaxMembers) {
		return "Project is full", false
	}

	var open models.Application
	err := db.DB.Where("project_id = ? AND user_id = ? AND status = ?",
		project.ID, userID, types.ApplicationPending).First(&open).Error

	if err == nil {
		return "An open application already exists", false
	}

	return "", true
}

func ApplyToProject(ctx *gin.Context) {
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

	var body ApplyRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	if msg, ok := checkJoinable(project, userID); !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	application := models.Application{
		UserID:    userID,
		ProjectID: projectID,
		Direction: types.DirectionApplied,
		Status:    types.ApplicationPending,
		Message:   body.Message,
	}

	if err := db.DB.Create(&application).Error; err != nil {
		logging.Logger.Errorf("Failed to create application for project %d: %v", projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create application"})
		return
	}

	NotifyProject(projectID, "application_received", gin.H{"application_id": application.ID, "user_id": userID})

	ctx.JSON(http.StatusCreated, gin.H{"message": "Application submitted", "application_id": application.ID})
}

func InviteToProject(ctx *gin.Context) {
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

	var body InviteRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := requireOwner(projectID, userID); err != nil {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the project owner may invite users"})
		return
	}

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))

	var invitee models.User

	if err := db.DB.Where("email = ?", email).First(&invitee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "No user with that email"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	if msg, ok := checkJoinable(project, invitee.ID); !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	invitation := models.Application{
		UserID:    invitee.ID,
		ProjectID: projectID,
		Direction: types.DirectionInvited,
		Status:    types.ApplicationPending,
		Message:   body.Message,
	}

	if err := db.DB.Create(&invitation).Error; err != nil {
		logging.Logger.Errorf("Failed to create invitation for project %d: %v", projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invitation"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Invitation sent", "application_id": invitation.ID})
}

// ListProjectApplications lists pending incoming applications, owner-only.
func ListProjectApplications(ctx *gin.Context) {
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

	if err := requireOwner(projectID, userID); err != nil {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the project owner may list applications"})
		return
	}

	var applications []models.Application

	if err := db.DB.Preload("User").Preload("Project").
		Where("project_id = ? AND status = ?", projectID, types.ApplicationPending).
		Order("created_at ASC").Find(&applications).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve applications"})
		return
	}

	response := make([]ApplicationResponse, 0, len(applications))

	for _, a := range applications {
		response = append(response, applicationResponse(a))
	}

	ctx.JSON(http.StatusOK, response)
}

func ListMyApplications(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var applications []models.Application

	if err := db.DB.Preload("User").Preload("Project").
		Where("user_id = ?", userID).
		Order("created_at DESC").Find(&applications).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve applications"})
		return
	}

	response := make([]ApplicationResponse, 0, len(applications))

	for _, a := range applications {
		response = append(response, applicationResponse(a))
	}

	ctx.JSON(http.StatusOK, response)
}

// ResolveApplication accepts, rejects, or withdraws a pending application.
// Who may act depends on direction: the project owner resolves applied
// applications, the invited user resolves invitations, and the originator
// may withdraw.
func ResolveApplication(ctx *gin.Context) {
	applicationID, err := utils.GetIDParam(ctx, "application_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body ResolveApplicationRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Action must be accept, reject, or withdraw"})
		return
	}

	var application models.Application

	if err := db.DB.Preload("Project").First(&application, applicationID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	if application.Status != types.ApplicationPending {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Application is already resolved"})
		return
	}

	isOwner := requireOwner(application.ProjectID, userID) == nil
	isSubject := application.UserID == userID

	var allowed bool

	switch body.Action {
	case "withdraw":
		// The side that opened the application may pull it back
		if application.Direction == types.DirectionApplied {
			allowed = isSubject
		} else {
			allowed = isOwner
		}
	case "accept", "reject":
		if application.Direction == types.DirectionApplied {
			allowed = isOwner
		} else {
			allowed = isSubject
		}
	}

	if !allowed {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to resolve this application"})
		return
	}

	if body.Action == "reject" {
		if err := db.DB.Model(&application).Update("status", types.ApplicationRejected).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update application"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"message": "Application rejected"})
		return
	}

	if body.Action == "withdraw" {
		if err := db.DB.Model(&application).Update("status", types.ApplicationWithdrawn).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update application"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"message": "Application withdrawn"})
		return
	}

	// Accept: capacity is re-checked inside the transaction so two
	// concurrent accepts cannot overfill the project.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var project models.Project

		if err := tx.First(&project, application.ProjectID).Error; err != nil {
			return err
		}

		var memberCount int64

		if err := tx.Model(&models.ProjectMembership{}).
			Where("project_id = ?", project.ID).Count(&memberCount).Error; err != nil {
			return err
		}

		if memberCount >= int64(project.MaxMembers) {
			return errors.New("project is full")
		}

		membership := models.ProjectMembership{
			UserID:    application.UserID,
			ProjectID: application.ProjectID,
			Role:      types.RoleMember,
		}

		if err := tx.Create(&membership).Error; err != nil {
			return err
		}

		if err := tx.Model(&application).Update("status", types.ApplicationAccepted).Error; err != nil {
			return err
		}

		// Close any other open application for the same pair
		return tx.Model(&models.Application{}).
			Where("project_id = ? AND user_id = ? AND status = ? AND id != ?",
				application.ProjectID, application.UserID, types.ApplicationPending, application.ID).
			Update("status", types.ApplicationWithdrawn).Error
	})

	if err != nil {
		if err.Error() == "project is full" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Project is full"})
			return
		}
		logging.Logger.Errorf("Failed to accept application %d: %v", application.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept application"})
		return
	}

	NotifyProject(application.ProjectID, "member_joined", gin.H{"user_id": application.UserID})

	ctx.JSON(http.StatusOK, gin.H{"message": "Application accepted"})
}
