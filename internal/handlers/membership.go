package handlers

import (
	"errors"
	"net/http"

	"github.com/collabdeck-dev/collabdeck/db"
	"github.com/collabdeck-dev/collabdeck/internal/logging"
	"github.com/collabdeck-dev/collabdeck/internal/models"
	"github.com/collabdeck-dev/collabdeck/internal/types"
	"github.com/collabdeck-dev/collabdeck/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MemberResponse struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type TransferOwnershipRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

func getMembership(projectID, userID uint) (models.ProjectMembership, error) {
	var membership models.ProjectMembership

	err := db.DB.Where("project_id = ? AND user_id = ?", projectID, userID).First(&membership).Error

	return membership, err
}

func requireOwner(projectID, userID uint) error {
	membership, err := getMembership(projectID, userID)

	if err != nil {
		return err
	}

	if membership.Role != types.RoleOwner {
		return errors.New("Only the project owner may do this")
	}

	return nil
}

func listProjectMembers(projectID uint) ([]MemberResponse, error) {
	var memberships []models.ProjectMembership

	if err := db.DB.Preload("User").Where("project_id = ?", projectID).Order("created_at ASC").Find(&memberships).Error; err != nil {
		return nil, err
	}

	members := make([]MemberResponse, 0, len(memberships))

	for _, m := range memberships {
		members = append(members, MemberResponse{
			UserID: m.UserID,
			Name:   m.User.Name,
			Email:  m.User.Email,
			Role:   m.Role,
		})
	}

	return members, nil
}

func GetProjectMembers(ctx *gin.Context) {
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

	if _, err := getMembership(projectID, userID); err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	members, err := listProjectMembers(projectID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve members"})
		return
	}

	ctx.JSON(http.StatusOK, members)
}

// UpdateMemberRole switches a member between member and mentor. The owner
// role never changes hands here; that goes through TransferOwnership.
func UpdateMemberRole(ctx *gin.Context) {
	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	targetID, err := utils.GetIDParam(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateMemberRoleRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Role must be member or mentor"})
		return
	}

	// The owner role is never assignable here
	if !types.ValidRole(body.Role) || body.Role == types.RoleOwner {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Role must be member or mentor"})
		return
	}

	if err := requireOwner(projectID, userID); err != nil {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the project owner may change roles"})
		return
	}

	membership, err := getMembership(projectID, targetID)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Membership not found"})
		return
	}

	if membership.Role == types.RoleOwner {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "The owner role cannot be changed here; transfer ownership instead"})
		return
	}

	membership.Role = body.Role

	if err := db.DB.Save(&membership).Error; err != nil {
		logging.Logger.Errorf("Failed to update role for user %d in project %d: %v", targetID, projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	NotifyProject(projectID, "member_role_changed", gin.H{"user_id": targetID, "role": membership.Role})

	ctx.JSON(http.StatusOK, MemberResponse{
		UserID: membership.UserID,
		Role:   membership.Role,
	})
}

// RemoveMember handles both owner-initiated removal and voluntary leave.
// The owner can never be removed: ownership moves only via transfer.
func RemoveMember(ctx *gin.Context) {
	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	targetID, err := utils.GetIDParam(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if targetID != userID {
		if err := requireOwner(projectID, userID); err != nil {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the project owner may remove members"})
			return
		}
	}

	membership, err := getMembership(projectID, targetID)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Membership not found"})
		return
	}

	if membership.Role == types.RoleOwner {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "The owner cannot leave the project; transfer ownership first"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		// Unassign the departing member's tasks
		if err := tx.Model(&models.Task{}).
			Where("project_id = ? AND assignee_id = ?", projectID, targetID).
			Update("assignee_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&membership).Error
	})

	if err != nil {
		logging.Logger.Errorf("Failed to remove user %d from project %d: %v", targetID, projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	NotifyProject(projectID, "member_left", gin.H{"user_id": targetID})

	ctx.Status(http.StatusNoContent)
}

// TransferOwnership moves the owner role to an existing member. The target
// becomes owner, the project's owner FK follows, and the previous owner is
// demoted to member, all in one transaction.
func TransferOwnership(ctx *gin.Context) {
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

	var body TransferOwnershipRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := requireOwner(projectID, userID); err != nil {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the project owner may transfer ownership"})
		return
	}

	if body.UserID == userID {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "You already own this project"})
		return
	}

	targetMembership, err := getMembership(projectID, body.UserID)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Target user is not a project member"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ProjectMembership{}).
			Where("project_id = ? AND user_id = ?", projectID, userID).
			Update("role", types.RoleMember).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.ProjectMembership{}).
			Where("id = ?", targetMembership.ID).
			Update("role", types.RoleOwner).Error; err != nil {
			return err
		}

		return tx.Model(&models.Project{}).
			Where("id = ?", projectID).
			Update("owner_id", body.UserID).Error
	})

	if err != nil {
		logging.Logger.Errorf("Failed to transfer ownership of project %d: %v", projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to transfer ownership"})
		return
	}

	NotifyProject(projectID, "ownership_transferred", gin.H{"from": userID, "to": body.UserID})

	ctx.JSON(http.StatusOK, gin.H{"message": "Ownership transferred successfully"})
}
