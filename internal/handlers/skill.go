package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/collabdeck-dev/collabdeck/db"
	"github.com/collabdeck-dev/collabdeck/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CatalogEntryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// findOrCreateSkill resolves a catalog row by case-insensitive name,
// creating it on demand.
func findOrCreateSkill(tx *gorm.DB, name string) (models.Skill, error) {
	name = strings.TrimSpace(name)

	var skill models.Skill

	err := tx.Where("LOWER(name) = LOWER(?)", name).First(&skill).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		skill = models.Skill{Name: name}
		err = tx.Create(&skill).Error
	}

	return skill, err
}

func findOrCreateInterest(tx *gorm.DB, name string) (models.Interest, error) {
	name = strings.TrimSpace(name)

	var interest models.Interest

	err := tx.Where("LOWER(name) = LOWER(?)", name).First(&interest).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		interest = models.Interest{Name: name}
		err = tx.Create(&interest).Error
	}

	return interest, err
}

func ListSkills(ctx *gin.Context) {
	query := db.DB.Model(&models.Skill{}).Order("name ASC")

	if q := strings.TrimSpace(ctx.Query("q")); q != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+q+"%")
	}

	var skills []models.Skill

	if err := query.Limit(100).Find(&skills).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve skills"})
		return
	}

	response := make([]CatalogEntryResponse, 0, len(skills))

	for _, skill := range skills {
		response = append(response, CatalogEntryResponse{ID: skill.ID, Name: skill.Name})
	}

	ctx.JSON(http.StatusOK, response)
}

func ListInterests(ctx *gin.Context) {
	query := db.DB.Model(&models.Interest{}).Order("name ASC")

	if q := strings.TrimSpace(ctx.Query("q")); q != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+q+"%")
	}

	var interests []models.Interest

	if err := query.Limit(100).Find(&interests).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve interests"})
		return
	}

	response := make([]CatalogEntryResponse, 0, len(interests))

	for _, interest := range interests {
		response = append(response, CatalogEntryResponse{ID: interest.ID, Name: interest.Name})
	}

	ctx.JSON(http.StatusOK, response)
}
