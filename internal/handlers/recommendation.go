package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/collabdeck-dev/collabdeck/db"
	"github.com/collabdeck-dev/collabdeck/internal/logging"
	"github.com/collabdeck-dev/collabdeck/internal/models"
	"github.com/collabdeck-dev/collabdeck/internal/services"
	"github.com/collabdeck-dev/collabdeck/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RecommendedProjectResponse struct {
	Project GetProjectResponse `json:"project"`
	Reason  string             `json:"reason"`
}

type RecommendationsResponse struct {
	Source      string                       `json:"source"`
	GeneratedAt time.Time                    `json:"generated_at"`
	Projects    []RecommendedProjectResponse `json:"projects"`
}

func buildRecommendationsResponse(recommendation models.Recommendation) RecommendationsResponse {
	response := RecommendationsResponse{
		Source:      recommendation.Source,
		GeneratedAt: recommendation.GeneratedAt,
		Projects:    []RecommendedProjectResponse{},
	}

	var items []services.RecommendationItem

	if err := json.Unmarshal(recommendation.Payload, &items); err != nil {
		logging.Logger.Errorf("Failed to parse recommendation payload for user %d: %v", recommendation.UserID, err)
		return response
	}

	// Resolve against live projects; stale entries are skipped
	for _, item := range items {
		var project models.Project

		if err := db.DB.First(&project, item.ProjectID).Error; err != nil {
			continue
		}

		response.Projects = append(response.Projects, RecommendedProjectResponse{
			Project: buildProjectResponse(project),
			Reason:  item.Reason,
		})
	}

	return response
}

func GetRecommendations(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var recommendation models.Recommendation

	if err := db.DB.Where("user_id = ?", userID).First(&recommendation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "No recommendations yet; generate them first"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve recommendations"})
		}
		return
	}

	ctx.JSON(http.StatusOK, buildRecommendationsResponse(recommendation))
}

func GenerateRecommendations(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	recommendation, err := services.GenerateRecommendations(userID)

	if err != nil {
		logging.Logger.Errorf("Failed to generate recommendations for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate recommendations"})
		return
	}

	ctx.JSON(http.StatusOK, buildRecommendationsResponse(recommendation))
}
