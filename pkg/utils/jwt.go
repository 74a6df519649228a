package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims membawa identitas hasil login: role, id dokter (opsional) dan nama tampilan.
type Claims struct {
	Role     string `json:"role"`
	DoctorID string `json:"doctor_id,omitempty"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

var ErrMissingSecret = errors.New("JWT secret key is missing")

// GenerateJWTToken membuat token HS256 dengan exp sesuai parameter.
func GenerateJWTToken(secret []byte, role, doctorID, name string, exp time.Time) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}

	claims := Claims{
		Role:     role,
		DoctorID: doctorID,
		Name:     name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   name,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateJWTToken memvalidasi token dan mengembalikan klaimnya.
func ValidateJWTToken(secret []byte, tokenString string) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Pastikan metode signing benar
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
