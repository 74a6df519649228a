package models

import (
	"time"

	"github.com/c14220110/mediflow-backend/internal/access"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult dikirim ke client setelah login berhasil.
type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	User      access.Identity `json:"user"`
}

// Account adalah kredensial tetap (admin, asisten) dari konfigurasi.
type Account struct {
	Username     string
	PasswordHash string
	Role         access.Role
	Name         string
}
