package services

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/c14220110/mediflow-backend/internal/access"
	"github.com/c14220110/mediflow-backend/internal/auth/models"
	catalogModels "github.com/c14220110/mediflow-backend/internal/catalog/models"
	"github.com/c14220110/mediflow-backend/pkg/utils"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// DoctorDirectory mencari kredensial dokter di katalog.
type DoctorDirectory interface {
	FindDoctorByUsername(username string) (catalogModels.Doctor, bool)
}

type AuthService struct {
	Accounts []models.Account
	Doctors  DoctorDirectory
	Secret   []byte
	TTL      time.Duration
	Now      func() time.Time
}

func NewAuthService(accounts []models.Account, doctors DoctorDirectory, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{
		Accounts: accounts,
		Doctors:  doctors,
		Secret:   secret,
		TTL:      ttl,
		Now:      time.Now,
	}
}

// Authenticate memeriksa akun tetap lebih dulu, lalu kredensial dokter.
// Akun tanpa hash password dianggap nonaktif.
func (s *AuthService) Authenticate(username, password string) (access.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return access.Identity{}, ErrInvalidCredentials
	}

	for _, acc := range s.Accounts {
		if acc.PasswordHash == "" || !strings.EqualFold(acc.Username, username) {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
			return access.Identity{}, ErrInvalidCredentials
		}
		return access.Identity{Role: acc.Role, Name: acc.Name}, nil
	}

	if s.Doctors != nil {
		if d, ok := s.Doctors.FindDoctorByUsername(username); ok && d.PasswordHash != "" {
			if bcrypt.CompareHashAndPassword([]byte(d.PasswordHash), []byte(password)) != nil {
				return access.Identity{}, ErrInvalidCredentials
			}
			return access.Identity{Role: access.RoleDoctor, ID: d.ID, Name: d.Name}, nil
		}
	}
	return access.Identity{}, ErrInvalidCredentials
}

// Login mengautentikasi lalu menerbitkan token JWT.
func (s *AuthService) Login(req models.LoginRequest) (models.LoginResult, error) {
	who, err := s.Authenticate(req.Username, req.Password)
	if err != nil {
		return models.LoginResult{}, err
	}
	exp := s.Now().Add(s.TTL)
	token, err := utils.GenerateJWTToken(s.Secret, string(who.Role), who.ID, who.Name, exp)
	if err != nil {
		return models.LoginResult{}, err
	}
	return models.LoginResult{Token: token, ExpiresAt: exp, User: who}, nil
}

// HashPassword dipakai oleh perintah CLI hash-password untuk mengisi konfigurasi.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
