package handlers

import (
	"errors"
	"net/http"

	"github.com/collabdeck-dev/collabdeck/db"
	"github.com/collabdeck-dev/collabdeck/internal/models"
	"github.com/collabdeck-dev/collabdeck/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateBookmarkRequest struct {
	ProjectID uint `json:"project_id" binding:"required"`
}

type BookmarkResponse struct {
	ID      uint               `json:"id"`
	Project GetProjectResponse `json:"project"`
}

func CreateBookmark(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body CreateBookmarkRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var project models.Project

	if err := db.DB.First(&project, body.ProjectID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	var existing models.Bookmark

	err = db.DB.Where("user_id = ? AND project_id = ?", userID, body.ProjectID).First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Project already bookmarked"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	bookmark := models.Bookmark{
		UserID:    userID,
		ProjectID: body.ProjectID,
	}

	if err := db.DB.Create(&bookmark).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create bookmark"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Project bookmarked", "bookmark_id": bookmark.ID})
}

func ListBookmarks(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var bookmarks []models.Bookmark

	if err := db.DB.Preload("Project").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&bookmarks).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve bookmarks"})
		return
	}

	response := make([]BookmarkResponse, 0, len(bookmarks))

	for _, b := range bookmarks {
		response = append(response, BookmarkResponse{
			ID:      b.ID,
			Project: buildProjectResponse(b.Project),
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func DeleteBookmark(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var bookmark models.Bookmark

	if err := db.DB.Where("user_id = ? AND project_id = ?", userID, projectID).First(&bookmark).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Bookmark not found"})
		return
	}

	if err := db.DB.Delete(&bookmark).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete bookmark"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
