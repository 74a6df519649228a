package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/c14220110/mediflow-backend/config"
	"github.com/c14220110/mediflow-backend/pkg/storage"
)

// Connect membuka koneksi ke database MariaDB.
// Semua kredensial diambil dari file .env melalui config.go.
func Connect(cfg *config.Config) (*sql.DB, error) {
	// Format DSN: username:password@tcp(host:port)/dbname?parseTime=true
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("gagal membuka koneksi ke database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("gagal melakukan ping ke database: %w", err)
	}
	return db, nil
}

// Store menyimpan koleksi JSON di tabel app_state (satu baris per key).
type Store struct {
	DB *sql.DB
}

// NewStore memastikan tabel app_state ada lalu mengembalikan Store.
func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	query := `
		CREATE TABLE IF NOT EXISTS app_state (
			state_key  VARCHAR(64) NOT NULL PRIMARY KEY,
			payload    LONGTEXT    NOT NULL,
			updated_at DATETIME    NOT NULL
		)
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := s.DB.QueryRowContext(ctx, "SELECT payload FROM app_state WHERE state_key = ?", key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

func (s *Store) Save(ctx context.Context, key string, payload []byte) error {
	query := `
		INSERT INTO app_state (state_key, payload, updated_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = VALUES(updated_at)
	`
	_, err := s.DB.ExecContext(ctx, query, key, string(payload), time.Now())
	return err
}

func (s *Store) Close() error {
	return s.DB.Close()
}
