package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/collabdeck-dev/collabdeck/db"
	"github.com/collabdeck-dev/collabdeck/internal/handlers"
	"github.com/collabdeck-dev/collabdeck/internal/models"
	"github.com/collabdeck-dev/collabdeck/internal/types"
)

func TestApplyAndAccept(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	owner, ownerToken := createTestUser(t, "Ada", "ada@example.com")
	applicant, applicantToken := createTestUser(t, "Bob", "bob@example.com")

	project := createTestProject(t, owner.ID, "Project", 5)

	w := doRequest(t, r, http.MethodPost,
		fmt.Sprintf("/api/projects/%d/applications", project.ID),
		handlers.ApplyRequest{Message: "Let me in"}, applicantToken)
	expectStatus(t, w, http.StatusCreated)

	var created struct {
		ApplicationID uint `json:"application_id"`
	}
	decodeResponse(t, w, &created)

	// A second open application for the same pair is rejected
	w = doRequest(t, r, http.MethodPost,
		fmt.Sprintf("/api/projects/%d/applications", project.ID),
		handlers.ApplyRequest{}, applicantToken)
	expectStatus(t, w, http.StatusBadRequest)

	// Only the owner sees the project's applications
	w = doRequest(t, r, http.MethodGet,
		fmt.Sprintf("/api/projects/%d/applications", project.ID), nil, applicantToken)
	expectStatus(t, w, http.StatusForbidden)

	w = doRequest(t, r, http.MethodGet,
		fmt.Sprintf("/api/projects/%d/applications", project.ID), nil, ownerToken)
	expectStatus(t, w, http.StatusOK)

	var pending []handlers.ApplicationResponse
	decodeResponse(t, w, &pending)

	if len(pending) != 1 || pending[0].Direction != types.DirectionApplied {
		t.Fatalf("Expected one applied application, got %+v", pending)
	}

	// The applicant may not accept their own application
	w = doRequest(t, r, http.MethodPatch,
		fmt.Sprintf("/api/applications/%d", created.ApplicationID),
		handlers.ResolveApplicationRequest{Action: "accept"}, applicantToken)
	expectStatus(t, w, http.StatusForbidden)

	w = doRequest(t, r, http.MethodPatch,
		fmt.Sprintf("/api/applications/%d", created.ApplicationID),
		handlers.ResolveApplicationRequest{Action: "accept"}, ownerToken)
	expectStatus(t, w, http.StatusOK)

	var membership models.ProjectMembership
	if err := db.DB.Where("project_id = ? AND user_id = ?", project.ID, applicant.ID).First(&membership).Error; err != nil {
		t.Fatalf("Expected accepted applicant to be a member: %v", err)
	}
	if membership.Role != types.RoleMember {
		t.Errorf("Expected role member, got %s", membership.Role)
	}

	// Resolving twice fails
	w = doRequest(t, r, http.MethodPatch,
		fmt.Sprintf("/api/applications/%d", created.ApplicationID),
		handlers.ResolveApplicationRequest{Action: "accept"}, ownerToken)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestAcceptChecksCapacity(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	owner, ownerToken := createTestUser(t, "Ada", "ada@example.com")
	_, firstToken := createTestUser(t, "Bob", "bob@example.com")
	_, secondToken := createTestUser(t, "Eve", "eve@example.com")

	project := createTestProject(t, owner.ID, "Tiny", 2)

	w := doRequest(t, r, http.MethodPost,
		fmt.Sprintf("/api/projects/%d/applications", project.ID),
		handlers.ApplyRequest{}, firstToken)
	expectStatus(t, w, http.StatusCreated)

	var first struct {
		ApplicationID uint `json:"application_id"`
	}
	decodeResponse(t, w, &first)

	w = doRequest(t, r, http.MethodPost,
		fmt.Sprintf("/api/projects/%d/applications", project.ID),
		handlers.ApplyRequest{}, secondToken)
	expectStatus(t, w, http.StatusCreated)

	var second struct {
		ApplicationID uint `json:"application_id"`
	}
	decodeResponse(t, w, &second)

	w = doRequest(t, r, http.MethodPatch,
		fmt.Sprintf("/api/applications/%d", first.ApplicationID),
		handlers.ResolveApplicationRequest{Action: "accept"}, ownerToken)
	expectStatus(t, w, http.StatusOK)

	// The project filled up between apply and accept
	w = doRequest(t, r, http.MethodPatch,
		fmt.Sprintf("/api/applications/%d", second.ApplicationID),
		handlers.ResolveApplicationRequest{Action: "accept"}, ownerToken)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestApplyRejectedWhenNotRecruiting(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	owner, _ := createTestUser(t, "Ada", "ada@example.com")
	_, applicantToken := createTestUser(t, "Bob", "bob@example.com")

	project := createTestProject(t, owner.ID, "Project", 5)

	if err := db.DB.Model(&project).Update("status", types.ProjectActive).Error; err != nil {
		t.Fatalf("Failed to update status: %v", err)
	}

	w := doRequest(t, r, http.MethodPost,
		fmt.Sprintf("/api/projects/%d/applications", project.ID),
		handlers.ApplyRequest{}, applicantToken)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestInviteFlow(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	owner, ownerToken := createTestUser(t, "Ada", "ada@example.com")
	invitee, inviteeToken := createTestUser(t, "Bob", "bob@example.com")
	_, memberToken := createTestUser(t, "Eve", "eve@example.com")

	project := createTestProject(t, owner.ID, "Project", 5)

	// Only the owner may invite
	w := doRequest(t, r, http.MethodPost,
		fmt.Sprintf("/api/projects/%d/invitations", project.ID),
		handlers.InviteRequest{Email: invitee.Email}, memberToken)
	expectStatus(t, w, http.StatusForbidden)

	// Unknown email
	w = doRequest(t, r, http.MethodPost,
		fmt.Sprintf("/api/projects/%d/invitations", project.ID),
		handlers.InviteRequest{Email: "nobody@example.com"}, ownerToken)
	expectStatus(t, w, http.StatusNotFound)

	w = doRequest(t, r, http.MethodPost,
		fmt.Sprintf("/api/projects/%d/invitations", project.ID),
		handlers.InviteRequest{Email: invitee.Email, Message: "Join us"}, ownerToken)
	expectStatus(t, w, http.StatusCreated)

	var invitation struct {
		ApplicationID uint `json:"application_id"`
	}
	decodeResponse(t, w, &invitation)

	// The invitation shows up in the invitee's list
	w = doRequest(t, r, http.MethodGet, "/api/applications", nil, inviteeToken)
	expectStatus(t, w, http.StatusOK)

	var mine []handlers.ApplicationResponse
	decodeResponse(t, w, &mine)

	if len(mine) != 1 || mine[0].Direction != types.DirectionInvited {
		t.Fatalf("Expected one invitation, got %+v", mine)
	}

	// The owner may not accept on the invitee's behalf
	w = doRequest(t, r, http.MethodPatch,
		fmt.Sprintf("/api/applications/%d", invitation.ApplicationID),
		handlers.ResolveApplicationRequest{Action: "accept"}, ownerToken)
	expectStatus(t, w, http.StatusForbidden)

	w = doRequest(t, r, http.MethodPatch,
		fmt.Sprintf("/api/applications/%d", invitation.ApplicationID),
		handlers.ResolveApplicationRequest{Action: "accept"}, inviteeToken)
	expectStatus(t, w, http.StatusOK)

	var membership models.ProjectMembership
	if err := db.DB.Where("project_id = ? AND user_id = ?", project.ID, invitee.ID).First(&membership).Error; err != nil {
		t.Fatalf("Expected invitee to become a member: %v", err)
	}
}

func TestWithdrawApplication(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	owner, ownerToken := createTestUser(t, "Ada", "ada@example.com")
	_, applicantToken := createTestUser(t, "Bob", "bob@example.com")

	project := createTestProject(t, owner.ID, "Project", 5)

	w := doRequest(t, r, http.MethodPost,
		fmt.Sprintf("/api/projects/%d/applications", project.ID),
		handlers.ApplyRequest{}, applicantToken)
	expectStatus(t, w, http.StatusCreated)

	var created struct {
		ApplicationID uint `json:"application_id"`
	}
	decodeResponse(t, w, &created)

	// The owner may not withdraw an applicant's own application
	w = doRequest(t, r, http.MethodPatch,
		fmt.Sprintf("/api/applications/%d", created.ApplicationID),
		handlers.ResolveApplicationRequest{Action: "withdraw"}, ownerToken)
	expectStatus(t, w, http.StatusForbidden)

	w = doRequest(t, r, http.MethodPatch,
		fmt.Sprintf("/api/applications/%d", created.ApplicationID),
		handlers.ResolveApplicationRequest{Action: "withdraw"}, applicantToken)
	expectStatus(t, w, http.StatusOK)

	var application models.Application
	if err := db.DB.First(&application, created.ApplicationID).Error; err != nil {
		t.Fatalf("Failed to reload application: %v", err)
	}
	if application.Status != types.ApplicationWithdrawn {
		t.Errorf("Expected status withdrawn, got %s", application.Status)
	}
}
