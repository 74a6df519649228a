package utils

import (
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateJWTToken(secret, "doctor", "d1", "Dr. Ruiz", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	claims, err := ValidateJWTToken(secret, token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Role != "doctor" || claims.DoctorID != "d1" || claims.Name != "Dr. Ruiz" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWTRejects(t *testing.T) {
	secret := []byte("test-secret")

	expired, _ := GenerateJWTToken(secret, "admin", "", "Admin", time.Now().Add(-time.Minute))
	if _, err := ValidateJWTToken(secret, expired); err == nil {
		t.Error("expired token must be rejected")
	}

	valid, _ := GenerateJWTToken(secret, "admin", "", "Admin", time.Now().Add(time.Hour))
	if _, err := ValidateJWTToken([]byte("other"), valid); err == nil {
		t.Error("token signed with another key must be rejected")
	}

	if _, err := GenerateJWTToken(nil, "admin", "", "Admin", time.Now()); err != ErrMissingSecret {
		t.Errorf("missing secret: %v", err)
	}
}
