package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/collabdeck-dev/collabdeck/db"
	"github.com/collabdeck-dev/collabdeck/internal/logging"
	"github.com/collabdeck-dev/collabdeck/internal/models"
	"github.com/collabdeck-dev/collabdeck/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UpdateProfileRequest struct {
	Headline       string            `json:"headline"`
	Bio            string            `json:"bio"`
	School         string            `json:"school"`
	Program        string            `json:"program"`
	GraduationYear int               `json:"graduation_year"`
	WeeklyHours    int               `json:"weekly_hours" binding:"omitempty,min=0,max=80"`
	Links          map[string]string `json:"links"`
	Visibility     string            `json:"visibility" binding:"omitempty,oneof=public private"`
}

type SetSkillsRequest struct {
	Skills []SkillEntry `json:"skills" binding:"required,dive"`
}

type SkillEntry struct {
	Name        string `json:"name" binding:"required"`
	Proficiency int    `json:"proficiency" binding:"required,min=1,max=5"`
}

type SetInterestsRequest struct {
	Interests []string `json:"interests" binding:"required"`
}

type WorkExperienceRequest struct {
	Company   string     `json:"company" binding:"required"`
	Title     string     `json:"title" binding:"required"`
	StartDate time.Time  `json:"start_date" binding:"required"`
	EndDate   *time.Time `json:"end_date"`
	Summary   string     `json:"summary"`
}

type PortfolioProjectRequest struct {
	Title   string `json:"title" binding:"required"`
	Summary string `json:"summary"`
	URL     string `json:"url" binding:"omitempty,url"`
}

type SkillResponse struct {
	Name        string `json:"name"`
	Proficiency int    `json:"proficiency"`
}

type WorkExperienceResponse struct {
	ID        uint       `json:"id"`
	Company   string     `json:"company"`
	Title     string     `json:"title"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Summary   string     `json:"summary"`
}

type PortfolioProjectResponse struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

type ProfileResponse struct {
	UserID            uint                       `json:"user_id"`
	Name              string                     `json:"name"`
	Headline          string                     `json:"headline"`
	Bio               string                     `json:"bio"`
	School            string                     `json:"school"`
	Program           string                     `json:"program"`
	GraduationYear    int                        `json:"graduation_year"`
	WeeklyHours       int                        `json:"weekly_hours"`
	Links             datatypes.JSON             `json:"links"`
	Visibility        string                     `json:"visibility"`
	Skills            []SkillResponse            `json:"skills"`
	Interests         []string                   `json:"interests"`
	WorkExperiences   []WorkExperienceResponse   `json:"work_experiences"`
	PortfolioProjects []PortfolioProjectResponse `json:"portfolio_projects"`
}

// getOrCreateProfile lazily creates the empty profile row on first access.
func getOrCreateProfile(userID uint) (models.UserProfile, error) {
	var profile models.UserProfile

	err := db.DB.Where("user_id = ?", userID).First(&profile).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.UserProfile{UserID: userID, Visibility: "public"}
		err = db.DB.Create(&profile).Error
	}

	return profile, err
}

func buildProfileResponse(profile models.UserProfile) (ProfileResponse, error) {
	var user models.User

	if err := db.DB.First(&user, profile.UserID).Error; err != nil {
		return ProfileResponse{}, err
	}

	var userSkills []models.UserSkill
	if err := db.DB.Preload("Skill").Where("user_id = ?", profile.UserID).Find(&userSkills).Error; err != nil {
		return ProfileResponse{}, err
	}

	var userInterests []models.UserInterest
	if err := db.DB.Preload("Interest").Where("user_id = ?", profile.UserID).Find(&userInterests).Error; err != nil {
		return ProfileResponse{}, err
	}

	var experiences []models.WorkExperience
	if err := db.DB.Where("profile_id = ?", profile.ID).Order("start_date DESC").Find(&experiences).Error; err != nil {
		return ProfileResponse{}, err
	}

	var portfolio []models.PortfolioProject
	if err := db.DB.Where("profile_id = ?", profile.ID).Find(&portfolio).Error; err != nil {
		return ProfileResponse{}, err
	}

	response := ProfileResponse{
		UserID:         profile.UserID,
		Name:           user.Name,
		Headline:       profile.Headline,
		Bio:            profile.Bio,
		School:         profile.School,
		Program:        profile.Program,
		GraduationYear: profile.GraduationYear,
		WeeklyHours:    profile.WeeklyHours,
		Links:          profile.Links,
		Visibility:     profile.Visibility,
	}

	for _, us := range userSkills {
		response.Skills = append(response.Skills, SkillResponse{
			Name:        us.Skill.Name,
			Proficiency: us.Proficiency,
		})
	}

	for _, ui := range userInterests {
		response.Interests = append(response.Interests, ui.Interest.Name)
	}

	for _, exp := range experiences {
		response.WorkExperiences = append(response.WorkExperiences, WorkExperienceResponse{
			ID:        exp.ID,
			Company:   exp.Company,
			Title:     exp.Title,
			StartDate: exp.StartDate,
			EndDate:   exp.EndDate,
			Summary:   exp.Summary,
		})
	}

	for _, pp := range portfolio {
		response.PortfolioProjects = append(response.PortfolioProjects, PortfolioProjectResponse{
			ID:      pp.ID,
			Title:   pp.Title,
			Summary: pp.Summary,
			URL:     pp.URL,
		})
	}

	return response, nil
}

func GetMyProfile(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	profile, err := getOrCreateProfile(userID)

	if err != nil {
		logging.Logger.Errorf("Failed to load profile for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	response, err := buildProfileResponse(profile)

	if err != nil {
		logging.Logger.Errorf("Failed to build profile response for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

func UpdateMyProfile(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateProfileRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	profile, err := getOrCreateProfile(userID)

	if err != nil {
		logging.Logger.Errorf("Failed to load profile for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	profile.Headline = body.Headline
	profile.Bio = body.Bio
	profile.School = body.School
	profile.Program = body.Program
	profile.GraduationYear = body.GraduationYear
	profile.WeeklyHours = body.WeeklyHours

	if body.Links != nil {
		linksJSON, err := json.Marshal(body.Links)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid links format"})
			return
		}
		profile.Links = linksJSON
	}

	if body.Visibility != "" {
		profile.Visibility = body.Visibility
	}

	if err := db.DB.Save(&profile).Error; err != nil {
		logging.Logger.Errorf("Failed to update profile for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	response, err := buildProfileResponse(profile)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

func GetUserProfile(ctx *gin.Context) {
	targetID, err := utils.GetIDParam(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currentID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var profile models.UserProfile

	if err := db.DB.Where("user_id = ?", targetID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		}
		return
	}

	// Private profiles are visible only to their owner
	if profile.Visibility == "private" && profile.UserID != currentID {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	response, err := buildProfileResponse(profile)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

func SetMySkills(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body SetSkillsRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserSkill{}).Error; err != nil {
			return err
		}

		for _, entry := range body.Skills {
			skill, err := findOrCreateSkill(tx, entry.Name)
			if err != nil {
				return err
			}

			userSkill := models.UserSkill{
				UserID:      userID,
				SkillID:     skill.ID,
				Proficiency: entry.Proficiency,
			}

			if err := tx.Create(&userSkill).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		logging.Logger.Errorf("Failed to set skills for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update skills"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Skills updated successfully"})
}

func SetMyInterests(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body SetInterestsRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserInterest{}).Error; err != nil {
			return err
		}

		for _, name := range body.Interests {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}

			interest, err := findOrCreateInterest(tx, name)
			if err != nil {
				return err
			}

			userInterest := models.UserInterest{
				UserID:     userID,
				InterestID: interest.ID,
			}

			if err := tx.Create(&userInterest).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		logging.Logger.Errorf("Failed to set interests for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update interests"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Interests updated successfully"})
}

func CreateWorkExperience(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body WorkExperienceRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if body.EndDate != nil && body.EndDate.Before(body.StartDate) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "End date must be after start date"})
		return
	}

	profile, err := getOrCreateProfile(userID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	experience := models.WorkExperience{
		ProfileID: profile.ID,
		Company:   body.Company,
		Title:     body.Title,
		StartDate: body.StartDate,
		EndDate:   body.EndDate,
		Summary:   body.Summary,
	}

	if err := db.DB.Create(&experience).Error; err != nil {
		logging.Logger.Errorf("Failed to create work experience for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create work experience"})
		return
	}

	ctx.JSON(http.StatusCreated, WorkExperienceResponse{
		ID:        experience.ID,
		Company:   experience.Company,
		Title:     experience.Title,
		StartDate: experience.StartDate,
		EndDate:   experience.EndDate,
		Summary:   experience.Summary,
	})
}

func UpdateWorkExperience(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	experienceID, err := utils.GetIDParam(ctx, "experience_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body WorkExperienceRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var experience models.WorkExperience

	if err := db.DB.Joins("JOIN user_profiles ON user_profiles.id = work_experiences.profile_id").
		Where("work_experiences.id = ? AND user_profiles.user_id = ?", experienceID, userID).
		First(&experience).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Work experience not found"})
		return
	}

	experience.Company = body.Company
	experience.Title = body.Title
	experience.StartDate = body.StartDate
	experience.EndDate = body.EndDate
	experience.Summary = body.Summary

	if err := db.DB.Save(&experience).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update work experience"})
		return
	}

	ctx.JSON(http.StatusOK, WorkExperienceResponse{
		ID:        experience.ID,
		Company:   experience.Company,
		Title:     experience.Title,
		StartDate: experience.StartDate,
		EndDate:   experience.EndDate,
		Summary:   experience.Summary,
	})
}

func DeleteWorkExperience(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	experienceID, err := utils.GetIDParam(ctx, "experience_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var experience models.WorkExperience

	if err := db.DB.Joins("JOIN user_profiles ON user_profiles.id = work_experiences.profile_id").
		Where("work_experiences.id = ? AND user_profiles.user_id = ?", experienceID, userID).
		First(&experience).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Work experience not found"})
		return
	}

	if err := db.DB.Delete(&experience).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete work experience"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

func CreatePortfolioProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body PortfolioProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	profile, err := getOrCreateProfile(userID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	item := models.PortfolioProject{
		ProfileID: profile.ID,
		Title:     body.Title,
		Summary:   body.Summary,
		URL:       body.URL,
	}

	if err := db.DB.Create(&item).Error; err != nil {
		logging.Logger.Errorf("Failed to create portfolio project for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create portfolio project"})
		return
	}

	ctx.JSON(http.StatusCreated, PortfolioProjectResponse{
		ID:      item.ID,
		Title:   item.Title,
		Summary: item.Summary,
		URL:     item.URL,
	})
}

func UpdatePortfolioProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	itemID, err := utils.GetIDParam(ctx, "portfolio_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body PortfolioProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var item models.PortfolioProject

	if err := db.DB.Joins("JOIN user_profiles ON user_profiles.id = portfolio_projects.profile_id").
		Where("portfolio_projects.id = ? AND user_profiles.user_id = ?", itemID, userID).
		First(&item).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Portfolio project not found"})
		return
	}

	item.Title = body.Title
	item.Summary = body.Summary
	item.URL = body.URL

	if err := db.DB.Save(&item).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update portfolio project"})
		return
	}

	ctx.JSON(http.StatusOK, PortfolioProjectResponse{
		ID:      item.ID,
		Title:   item.Title,
		Summary: item.Summary,
		URL:     item.URL,
	})
}

func DeletePortfolioProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	itemID, err := utils.GetIDParam(ctx, "portfolio_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var item models.PortfolioProject

	if err := db.DB.Joins("JOIN user_profiles ON user_profiles.id = portfolio_projects.profile_id").
		Where("portfolio_projects.id = ? AND user_profiles.user_id = ?", itemID, userID).
		First(&item).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Portfolio project not found"})
		return
	}

	if err := db.DB.Delete(&item).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete portfolio project"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
