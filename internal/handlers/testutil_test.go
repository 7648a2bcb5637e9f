package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/collabdeck-dev/collabdeck/db"
	"github.com/collabdeck-dev/collabdeck/internal/auth"
	"github.com/collabdeck-dev/collabdeck/internal/models"
	"github.com/collabdeck-dev/collabdeck/internal/router"
	"github.com/collabdeck-dev/collabdeck/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "password123"

// setupTestDB points the global handle at a fresh in-memory database and
// runs migrations. Each test gets its own database.
func setupTestDB(t *testing.T) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret")

	if err := auth.InitJWTSecret(); err != nil {
		t.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})

	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// A single connection keeps every query on the same in-memory database
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying connection: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	db.DB = conn
}

func newTestRouter() *gin.Engine {
	return router.NewRouter()
}

// createTestUser inserts a user directly and returns it with a valid token.
func createTestUser(t *testing.T, name, email string) (models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := models.User{Name: name, Email: email, PasswordHash: string(hash)}

	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	token, err := auth.GenerateJWT(user.ID, user.Email)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	return user, token
}

// createTestProject inserts a project with its owner membership.
func createTestProject(t *testing.T, ownerID uint, name string, maxMembers int) models.Project {
	t.Helper()

	project := models.Project{
		Name:       name,
		Status:     types.ProjectRecruiting,
		MaxMembers: maxMembers,
		OwnerID:    ownerID,
	}

	if err := db.DB.Create(&project).Error; err != nil {
		t.Fatalf("Failed to create test project: %v", err)
	}

	membership := models.ProjectMembership{
		UserID:    ownerID,
		ProjectID: project.ID,
		Role:      types.RoleOwner,
	}

	if err := db.DB.Create(&membership).Error; err != nil {
		t.Fatalf("Failed to create owner membership: %v", err)
	}

	return project
}

// addMember inserts a plain membership row.
func addMember(t *testing.T, projectID, userID uint, role string) models.ProjectMembership {
	t.Helper()

	membership := models.ProjectMembership{
		UserID:    userID,
		ProjectID: projectID,
		Role:      role,
	}

	if err := db.DB.Create(&membership).Error; err != nil {
		t.Fatalf("Failed to create membership: %v", err)
	}

	return membership
}

// doRequest performs an HTTP request against the router and records the
// response. A non-nil body is sent as JSON.
func doRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer

	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()

	if w.Code != want {
		t.Fatalf("Expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}
