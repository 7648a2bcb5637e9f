package auth

import (
	"os"
	"testing"
)

func TestGenerateAndVerifyJWT(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")

	if err := InitJWTSecret(); err != nil {
		t.Fatalf("Failed to initialize secret: %v", err)
	}

	token, err := GenerateJWT(42, "ada@example.com")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	parsed, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("Failed to verify token: %v", err)
	}
	if !parsed.Valid {
		t.Fatal("Expected token to be valid")
	}

	userID, err := UserIDFromToken(parsed)
	if err != nil {
		t.Fatalf("Failed to extract user ID: %v", err)
	}
	if userID != 42 {
		t.Errorf("Expected user ID 42, got %d", userID)
	}
}

func TestVerifyJWTRejectsTampered(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")

	if err := InitJWTSecret(); err != nil {
		t.Fatalf("Failed to initialize secret: %v", err)
	}

	token, err := GenerateJWT(42, "ada@example.com")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := VerifyJWT(token + "x"); err == nil {
		t.Error("Expected a tampered token to fail verification")
	}

	if _, err := VerifyJWT("not.a.token"); err == nil {
		t.Error("Expected garbage to fail verification")
	}
}

func TestInitJWTSecretRequiresEnv(t *testing.T) {
	os.Unsetenv("JWT_SECRET")

	if err := InitJWTSecret(); err == nil {
		t.Error("Expected an error when JWT_SECRET is missing")
	}

	os.Setenv("JWT_SECRET", "test-secret")
}
