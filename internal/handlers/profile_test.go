package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/collabdeck-dev/collabdeck/internal/handlers"
)

func TestProfileLazyCreateAndUpdate(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	_, token := createTestUser(t, "Ada", "ada@example.com")

	// First access creates an empty public profile
	w := doRequest(t, r, http.MethodGet, "/api/profile", nil, token)
	expectStatus(t, w, http.StatusOK)

	var profile handlers.ProfileResponse
	decodeResponse(t, w, &profile)

	if profile.Visibility != "public" {
		t.Errorf("Expected default visibility public, got %s", profile.Visibility)
	}
	if profile.Name != "Ada" {
		t.Errorf("Expected name Ada, got %s", profile.Name)
	}

	w = doRequest(t, r, http.MethodPut, "/api/profile", handlers.UpdateProfileRequest{
		Headline:       "CS student",
		Bio:            "I like compilers",
		School:         "MIT",
		Program:        "Computer Science",
		GraduationYear: 2027,
		WeeklyHours:    10,
		Links:          map[string]string{"github": "https://github.com/ada"},
	}, token)
	expectStatus(t, w, http.StatusOK)

	decodeResponse(t, w, &profile)

	if profile.Headline != "CS student" {
		t.Errorf("Expected updated headline, got %s", profile.Headline)
	}
	if profile.GraduationYear != 2027 {
		t.Errorf("Expected graduation year 2027, got %d", profile.GraduationYear)
	}
	if len(profile.Links) == 0 {
		t.Error("Expected links to be stored")
	}
}

func TestSetSkillsReplaces(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	_, token := createTestUser(t, "Ada", "ada@example.com")

	w := doRequest(t, r, http.MethodPut, "/api/profile/skills", handlers.SetSkillsRequest{
		Skills: []handlers.SkillEntry{
			{Name: "Go", Proficiency: 4},
			{Name: "SQL", Proficiency: 3},
		},
	}, token)
	expectStatus(t, w, http.StatusOK)

	// A second call replaces the whole set
	w = doRequest(t, r, http.MethodPut, "/api/profile/skills", handlers.SetSkillsRequest{
		Skills: []handlers.SkillEntry{
			{Name: "Go", Proficiency: 5},
		},
	}, token)
	expectStatus(t, w, http.StatusOK)

	w = doRequest(t, r, http.MethodGet, "/api/profile", nil, token)
	expectStatus(t, w, http.StatusOK)

	var profile handlers.ProfileResponse
	decodeResponse(t, w, &profile)

	if len(profile.Skills) != 1 {
		t.Fatalf("Expected 1 skill after replace, got %+v", profile.Skills)
	}
	if profile.Skills[0].Name != "Go" || profile.Skills[0].Proficiency != 5 {
		t.Errorf("Expected Go at proficiency 5, got %+v", profile.Skills[0])
	}

	// Proficiency is bounded
	w = doRequest(t, r, http.MethodPut, "/api/profile/skills", handlers.SetSkillsRequest{
		Skills: []handlers.SkillEntry{
			{Name: "Go", Proficiency: 6},
		},
	}, token)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestSetInterests(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	_, token := createTestUser(t, "Ada", "ada@example.com")

	w := doRequest(t, r, http.MethodPut, "/api/profile/interests", handlers.SetInterestsRequest{
		Interests: []string{"Distributed Systems", "  ", "Compilers"},
	}, token)
	expectStatus(t, w, http.StatusOK)

	w = doRequest(t, r, http.MethodGet, "/api/profile", nil, token)
	expectStatus(t, w, http.StatusOK)

	var profile handlers.ProfileResponse
	decodeResponse(t, w, &profile)

	if len(profile.Interests) != 2 {
		t.Fatalf("Expected blank interests to be skipped, got %+v", profile.Interests)
	}
}

func TestPrivateProfileHidden(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	_, adaToken := createTestUser(t, "Ada", "ada@example.com")
	bob, bobToken := createTestUser(t, "Bob", "bob@example.com")

	w := doRequest(t, r, http.MethodPut, "/api/profile", handlers.UpdateProfileRequest{
		Headline:   "Hidden",
		Visibility: "private",
	}, bobToken)
	expectStatus(t, w, http.StatusOK)

	w = doRequest(t, r, http.MethodGet,
		fmt.Sprintf("/api/users/%d/profile", bob.ID), nil, adaToken)
	expectStatus(t, w, http.StatusNotFound)

	// The owner still sees their own private profile
	w = doRequest(t, r, http.MethodGet,
		fmt.Sprintf("/api/users/%d/profile", bob.ID), nil, bobToken)
	expectStatus(t, w, http.StatusOK)
}

func TestWorkExperienceCRUD(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	_, token := createTestUser(t, "Ada", "ada@example.com")
	_, otherToken := createTestUser(t, "Bob", "bob@example.com")

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	w := doRequest(t, r, http.MethodPost, "/api/profile/experiences", handlers.WorkExperienceRequest{
		Company:   "Acme",
		Title:     "Intern",
		StartDate: start,
	}, token)
	expectStatus(t, w, http.StatusCreated)

	var created handlers.WorkExperienceResponse
	decodeResponse(t, w, &created)

	// Another user cannot edit it
	w = doRequest(t, r, http.MethodPut,
		fmt.Sprintf("/api/profile/experiences/%d", created.ID),
		handlers.WorkExperienceRequest{Company: "Evil", Title: "Boss", StartDate: start}, otherToken)
	expectStatus(t, w, http.StatusNotFound)

	w = doRequest(t, r, http.MethodPut,
		fmt.Sprintf("/api/profile/experiences/%d", created.ID),
		handlers.WorkExperienceRequest{Company: "Acme", Title: "Engineer", StartDate: start}, token)
	expectStatus(t, w, http.StatusOK)

	var updated handlers.WorkExperienceResponse
	decodeResponse(t, w, &updated)

	if updated.Title != "Engineer" {
		t.Errorf("Expected title Engineer, got %s", updated.Title)
	}

	w = doRequest(t, r, http.MethodDelete,
		fmt.Sprintf("/api/profile/experiences/%d", created.ID), nil, token)
	expectStatus(t, w, http.StatusNoContent)

	w = doRequest(t, r, http.MethodGet, "/api/profile", nil, token)
	expectStatus(t, w, http.StatusOK)

	var profile handlers.ProfileResponse
	decodeResponse(t, w, &profile)

	if len(profile.WorkExperiences) != 0 {
		t.Errorf("Expected no experiences after deletion, got %d", len(profile.WorkExperiences))
	}
}

func TestPortfolioProjectCRUD(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	_, token := createTestUser(t, "Ada", "ada@example.com")

	w := doRequest(t, r, http.MethodPost, "/api/profile/portfolio", handlers.PortfolioProjectRequest{
		Title:   "Ray Tracer",
		Summary: "A weekend ray tracer",
		URL:     "https://github.com/ada/rays",
	}, token)
	expectStatus(t, w, http.StatusCreated)

	var created handlers.PortfolioProjectResponse
	decodeResponse(t, w, &created)

	w = doRequest(t, r, http.MethodPut,
		fmt.Sprintf("/api/profile/portfolio/%d", created.ID),
		handlers.PortfolioProjectRequest{Title: "Ray Tracer v2"}, token)
	expectStatus(t, w, http.StatusOK)

	w = doRequest(t, r, http.MethodDelete,
		fmt.Sprintf("/api/profile/portfolio/%d", created.ID), nil, token)
	expectStatus(t, w, http.StatusNoContent)

	w = doRequest(t, r, http.MethodDelete,
		fmt.Sprintf("/api/profile/portfolio/%d", created.ID), nil, token)
	expectStatus(t, w, http.StatusNotFound)
}
