package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/collabdeck-dev/collabdeck/db"
	"github.com/collabdeck-dev/collabdeck/internal/logging"
	"github.com/collabdeck-dev/collabdeck/internal/models"
	"github.com/collabdeck-dev/collabdeck/internal/types"
	"github.com/sony/gobreaker"
)

const (
	defaultModel       = "gpt-4o-mini"
	maxCandidates      = 25
	maxRecommendations = 5
)

type RecommendationItem struct {
	ProjectID uint   `json:"project_id"`
	Reason    string `json:"reason"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

// The breaker keeps a flaky LLM endpoint from stalling every request;
// while open, callers go straight to the skill-overlap fallback.
var llmBreaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
	Name:        "llm-recommendations",
	MaxRequests: 1,
	Interval:    60 * time.Second,
	Timeout:     120 * time.Second,
	ReadyToTrip: func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 3
	},
})

type candidateProject struct {
	ID          uint
	Name        string
	Description string
	Skills      []string
}

func loadCandidates(userID uint) ([]candidateProject, error) {
	var projects []models.Project

	// Recruiting projects the user is not already part of
	err := db.DB.Where("status = ?", types.ProjectRecruiting).
		Where("id NOT IN (?)", db.DB.Model(&models.ProjectMembership{}).
			Select("project_id").Where("user_id = ?", userID)).
		Order("created_at DESC").
		Limit(maxCandidates).
		Find(&projects).Error

	if err != nil {
		return nil, err
	}

	candidates := make([]candidateProject, 0, len(projects))

	for _, p := range projects {
		var projectSkills []models.ProjectSkill

		if err := db.DB.Preload("Skill").Where("project_id = ?", p.ID).Find(&projectSkills).Error; err != nil {
			return nil, err
		}

		c := candidateProject{ID: p.ID, Name: p.Name, Description: p.Description}

		for _, ps := range projectSkills {
			c.Skills = append(c.Skills, ps.Skill.Name)
		}

		candidates = append(candidates, c)
	}

	return candidates, nil
}

func buildPrompt(userID uint, candidates []candidateProject) (string, error) {
	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		return "", err
	}

	var profile models.UserProfile
	db.DB.Where("user_id = ?", userID).First(&profile)

	var userSkills []models.UserSkill
	if err := db.DB.Preload("Skill").Where("user_id = ?", userID).Find(&userSkills).Error; err != nil {
		return "", err
	}

	var userInterests []models.UserInterest
	if err := db.DB.Preload("Interest").Where("user_id = ?", userID).Find(&userInterests).Error; err != nil {
		return "", err
	}

	var sb strings.Builder

	sb.WriteString("You match students with projects. Student profile:\n")
	fmt.Fprintf(&sb, "Headline: %s\nBio: %s\nProgram: %s\n", profile.Headline, profile.Bio, profile.Program)

	sb.WriteString("Skills: ")
	for i, us := range userSkills {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s (level %d)", us.Skill.Name, us.Proficiency)
	}
	sb.WriteString("\nInterests: ")
	for i, ui := range userInterests {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(ui.Interest.Name)
	}

	sb.WriteString("\n\nOpen projects:\n")
	for _, c := range candidates {
		fmt.Fprintf(&sb, "- id=%d name=%q description=%q skills=%s\n",
			c.ID, c.Name, c.Description, strings.Join(c.Skills, ","))
	}

	fmt.Fprintf(&sb, "\nPick up to %d projects that fit this student best. "+
		"Reply with ONLY a JSON array: [{\"project_id\": <id>, \"reason\": \"<one sentence>\"}]", maxRecommendations)

	return sb.String(), nil
}

func callLLM(prompt string) ([]RecommendationItem, error) {
	apiURL := os.Getenv("LLM_API_URL")
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1/chat/completions"
	}

	apiKey := os.Getenv("LLM_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is not set")
	}

	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = defaultModel
	}

	payload := chatCompletionRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a project-matching assistant for a student collaboration platform."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("LLM API returned status %d", resp.StatusCode)
	}

	var completion chatCompletionResponse

	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("LLM API returned no choices")
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)

	// Models sometimes wrap the JSON in a code fence
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var items []RecommendationItem

	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return nil, fmt.Errorf("failed to parse recommendations: %w", err)
	}

	if len(items) > maxRecommendations {
		items = items[:maxRecommendations]
	}

	return items, nil
}

// fallbackBySkillOverlap ranks candidates by the number of required skills
// the user also has.
func fallbackBySkillOverlap(userID uint, candidates []candidateProject) []RecommendationItem {
	var userSkills []models.UserSkill

	db.DB.Preload("Skill").Where("user_id = ?", userID).Find(&userSkills)

	owned := make(map[string]bool, len(userSkills))

	for _, us := range userSkills {
		owned[strings.ToLower(us.Skill.Name)] = true
	}

	type scored struct {
		candidate candidateProject
		overlap   int
	}

	ranked := make([]scored, 0, len(candidates))

	for _, c := range candidates {
		overlap := 0
		for _, s := range c.Skills {
			if owned[strings.ToLower(s)] {
				overlap++
			}
		}
		ranked = append(ranked, scored{candidate: c, overlap: overlap})
	}

	// Insertion sort; the candidate list is small
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].overlap > ranked[j-1].overlap; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}

	items := make([]RecommendationItem, 0, maxRecommendations)

	for _, r := range ranked {
		if len(items) == maxRecommendations {
			break
		}

		reason := "Open project looking for contributors"

		if r.overlap > 0 {
			reason = fmt.Sprintf("Matches %d of your skills", r.overlap)
		}

		items = append(items, RecommendationItem{ProjectID: r.candidate.ID, Reason: reason})
	}

	return items
}

// GenerateRecommendations builds the prompt, asks the LLM through the
// circuit breaker, and persists the result. Any LLM failure degrades to
// the skill-overlap fallback instead of failing the request.
func GenerateRecommendations(userID uint) (models.Recommendation, error) {
	candidates, err := loadCandidates(userID)

	if err != nil {
		return models.Recommendation{}, err
	}

	var items []RecommendationItem
	source := "llm"

	if len(candidates) > 0 {
		prompt, err := buildPrompt(userID, candidates)

		if err != nil {
			return models.Recommendation{}, err
		}

		result, err := llmBreaker.Execute(func() (interface{}, error) {
			return callLLM(prompt)
		})

		if err != nil {
			logging.Logger.Warnf("LLM recommendation failed for user %d, using fallback: %v", userID, err)
			items = fallbackBySkillOverlap(userID, candidates)
			source = "fallback"
		} else {
			items = result.([]RecommendationItem)
		}
	}

	payload, err := json.Marshal(items)

	if err != nil {
		return models.Recommendation{}, err
	}

	recommendation := models.Recommendation{
		UserID:      userID,
		Source:      source,
		Payload:     payload,
		GeneratedAt: time.Now(),
	}

	var existing models.Recommendation

	if err := db.DB.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		existing.Source = recommendation.Source
		existing.Payload = recommendation.Payload
		existing.GeneratedAt = recommendation.GeneratedAt

		if err := db.DB.Save(&existing).Error; err != nil {
			return models.Recommendation{}, err
		}

		return existing, nil
	}

	if err := db.DB.Create(&recommendation).Error; err != nil {
		return models.Recommendation{}, err
	}

	return recommendation, nil
}
