package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/collabdeck-dev/collabdeck/db"
	"github.com/collabdeck-dev/collabdeck/internal/handlers"
	"github.com/collabdeck-dev/collabdeck/internal/models"
	"github.com/collabdeck-dev/collabdeck/internal/services"
)

func TestGetRecommendationsBeforeGenerate(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	_, token := createTestUser(t, "Ada", "ada@example.com")

	w := doRequest(t, r, http.MethodGet, "/api/recommendations", nil, token)
	expectStatus(t, w, http.StatusNotFound)
}

func TestGetRecommendationsSkipsStaleProjects(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	owner, _ := createTestUser(t, "Ada", "ada@example.com")
	user, token := createTestUser(t, "Bob", "bob@example.com")

	live := createTestProject(t, owner.ID, "Live Project", 5)

	payload, err := json.Marshal([]services.RecommendationItem{
		{ProjectID: live.ID, Reason: "Good fit"},
		{ProjectID: 9999, Reason: "Deleted meanwhile"},
	})
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}

	recommendation := models.Recommendation{
		UserID:      user.ID,
		Source:      "fallback",
		Payload:     payload,
		GeneratedAt: time.Now(),
	}
	if err := db.DB.Create(&recommendation).Error; err != nil {
		t.Fatalf("Failed to create recommendation: %v", err)
	}

	w := doRequest(t, r, http.MethodGet, "/api/recommendations", nil, token)
	expectStatus(t, w, http.StatusOK)

	var response handlers.RecommendationsResponse
	decodeResponse(t, w, &response)

	if response.Source != "fallback" {
		t.Errorf("Expected source fallback, got %s", response.Source)
	}
	if len(response.Projects) != 1 {
		t.Fatalf("Expected stale entry to be skipped, got %+v", response.Projects)
	}
	if response.Projects[0].Project.ID != live.ID {
		t.Errorf("Expected live project %d, got %d", live.ID, response.Projects[0].Project.ID)
	}
	if response.Projects[0].Reason != "Good fit" {
		t.Errorf("Unexpected reason %q", response.Projects[0].Reason)
	}
}
