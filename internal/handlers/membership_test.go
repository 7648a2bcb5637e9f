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

func TestOwnerCannotLeave(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	owner, token := createTestUser(t, "Ada", "ada@example.com")
	project := createTestProject(t, owner.ID, "Project", 5)

	w := doRequest(t, r, http.MethodDelete,
		fmt.Sprintf("/api/projects/%d/members/%d", project.ID, owner.ID), nil, token)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestMemberCanLeave(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	owner, _ := createTestUser(t, "Ada", "ada@example.com")
	member, memberToken := createTestUser(t, "Bob", "bob@example.com")

	project := createTestProject(t, owner.ID, "Project", 5)
	addMember(t, project.ID, member.ID, types.RoleMember)

	task := models.Task{
		ProjectID:  project.ID,
		Title:      "Write docs",
		Status:     types.TaskTodo,
		Priority:   "medium",
		AssigneeID: &member.ID,
	}
	if err := db.DB.Create(&task).Error; err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	w := doRequest(t, r, http.MethodDelete,
		fmt.Sprintf("/api/projects/%d/members/%d", project.ID, member.ID), nil, memberToken)
	expectStatus(t, w, http.StatusNoContent)

	var count int64
	db.DB.Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", project.ID, member.ID).Count(&count)
	if count != 0 {
		t.Error("Expected membership to be removed")
	}

	// The departing member's tasks are unassigned
	var reloaded models.Task
	if err := db.DB.First(&reloaded, task.ID).Error; err != nil {
		t.Fatalf("Failed to reload task: %v", err)
	}
	if reloaded.AssigneeID != nil {
		t.Errorf("Expected task to be unassigned, got assignee %d", *reloaded.AssigneeID)
	}
}

func TestRemoveMemberRequiresOwner(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	owner, _ := createTestUser(t, "Ada", "ada@example.com")
	member, _ := createTestUser(t, "Bob", "bob@example.com")
	other, otherToken := createTestUser(t, "Eve", "eve@example.com")

	project := createTestProject(t, owner.ID, "Project", 5)
	addMember(t, project.ID, member.ID, types.RoleMember)
	addMember(t, project.ID, other.ID, types.RoleMember)

	w := doRequest(t, r, http.MethodDelete,
		fmt.Sprintf("/api/projects/%d/members/%d", project.ID, member.ID), nil, otherToken)
	expectStatus(t, w, http.StatusForbidden)
}

func TestUpdateMemberRole(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	owner, ownerToken := createTestUser(t, "Ada", "ada@example.com")
	member, memberToken := createTestUser(t, "Bob", "bob@example.com")

	project := createTestProject(t, owner.ID, "Project", 5)
	addMember(t, project.ID, member.ID, types.RoleMember)

	// Non-owners may not change roles
	w := doRequest(t, r, http.MethodPatch,
		fmt.Sprintf("/api/projects/%d/members/%d", project.ID, member.ID),
		handlers.UpdateMemberRoleRequest{Role: types.RoleMentor}, memberToken)
	expectStatus(t, w, http.StatusForbidden)

	w = doRequest(t, r, http.MethodPatch,
		fmt.Sprintf("/api/projects/%d/members/%d", project.ID, member.ID),
		handlers.UpdateMemberRoleRequest{Role: types.RoleMentor}, ownerToken)
	expectStatus(t, w, http.StatusOK)

	var membership models.ProjectMembership
	if err := db.DB.Where("project_id = ? AND user_id = ?", project.ID, member.ID).First(&membership).Error; err != nil {
		t.Fatalf("Failed to reload membership: %v", err)
	}
	if membership.Role != types.RoleMentor {
		t.Errorf("Expected role mentor, got %s", membership.Role)
	}

	// The owner role cannot be assigned through role updates
	w = doRequest(t, r, http.MethodPatch,
		fmt.Sprintf("/api/projects/%d/members/%d", project.ID, owner.ID),
		handlers.UpdateMemberRoleRequest{Role: types.RoleMember}, ownerToken)
	expectStatus(t, w, http.StatusBadRequest)

	// Unknown roles and the owner role are rejected outright
	w = doRequest(t, r, http.MethodPatch,
		fmt.Sprintf("/api/projects/%d/members/%d", project.ID, member.ID),
		handlers.UpdateMemberRoleRequest{Role: "captain"}, ownerToken)
	expectStatus(t, w, http.StatusBadRequest)

	w = doRequest(t, r, http.MethodPatch,
		fmt.Sprintf("/api/projects/%d/members/%d", project.ID, member.ID),
		handlers.UpdateMemberRoleRequest{Role: types.RoleOwner}, ownerToken)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestTransferOwnership(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	owner, ownerToken := createTestUser(t, "Ada", "ada@example.com")
	member, _ := createTestUser(t, "Bob", "bob@example.com")
	_, outsiderToken := createTestUser(t, "Eve", "eve@example.com")

	project := createTestProject(t, owner.ID, "Project", 5)
	addMember(t, project.ID, member.ID, types.RoleMember)

	// Only the owner may transfer
	w := doRequest(t, r, http.MethodPost,
		fmt.Sprintf("/api/projects/%d/transfer-ownership", project.ID),
		handlers.TransferOwnershipRequest{UserID: member.ID}, outsiderToken)
	expectStatus(t, w, http.StatusForbidden)

	// The target must already be a member
	w = doRequest(t, r, http.MethodPost,
		fmt.Sprintf("/api/projects/%d/transfer-ownership", project.ID),
		handlers.TransferOwnershipRequest{UserID: 9999}, ownerToken)
	expectStatus(t, w, http.StatusBadRequest)

	w = doRequest(t, r, http.MethodPost,
		fmt.Sprintf("/api/projects/%d/transfer-ownership", project.ID),
		handlers.TransferOwnershipRequest{UserID: member.ID}, ownerToken)
	expectStatus(t, w, http.StatusOK)

	var reloaded models.Project
	if err := db.DB.First(&reloaded, project.ID).Error; err != nil {
		t.Fatalf("Failed to reload project: %v", err)
	}
	if reloaded.OwnerID != member.ID {
		t.Errorf("Expected owner %d, got %d", member.ID, reloaded.OwnerID)
	}

	var oldOwner, newOwner models.ProjectMembership
	db.DB.Where("project_id = ? AND user_id = ?", project.ID, owner.ID).First(&oldOwner)
	db.DB.Where("project_id = ? AND user_id = ?", project.ID, member.ID).First(&newOwner)

	if oldOwner.Role != types.RoleMember {
		t.Errorf("Expected previous owner to be demoted, got %s", oldOwner.Role)
	}
	if newOwner.Role != types.RoleOwner {
		t.Errorf("Expected target to be owner, got %s", newOwner.Role)
	}
}

func TestGetProjectMembersMemberOnly(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	owner, ownerToken := createTestUser(t, "Ada", "ada@example.com")
	_, outsiderToken := createTestUser(t, "Eve", "eve@example.com")

	project := createTestProject(t, owner.ID, "Project", 5)

	w := doRequest(t, r, http.MethodGet,
		fmt.Sprintf("/api/projects/%d/members", project.ID), nil, outsiderToken)
	expectStatus(t, w, http.StatusNotFound)

	w = doRequest(t, r, http.MethodGet,
		fmt.Sprintf("/api/projects/%d/members", project.ID), nil, ownerToken)
	expectStatus(t, w, http.StatusOK)

	var members []handlers.MemberResponse
	decodeResponse(t, w, &members)

	if len(members) != 1 || members[0].Role != types.RoleOwner {
		t.Fatalf("Expected a single owner membership, got %+v", members)
	}
}
