package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/c14220110/mediflow-backend/pkg/storage"
)

// stateEntry adalah satu koleksi yang disimpan per key.
type stateEntry struct {
	Key       string `gorm:"primaryKey;column:state_key;size:64"`
	Payload   string `gorm:"column:payload;type:text;not null"`
	UpdatedAt time.Time
}

func (stateEntry) TableName() string { return "app_state" }

type Store struct {
	db *gorm.DB
}

// Open membuka koneksi gorm lalu memigrasi tabel app_state.
func Open(uri string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(uri), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&stateEntry{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	var entry stateEntry
	err := s.db.WithContext(ctx).Where("state_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(entry.Payload), nil
}

func (s *Store) Save(ctx context.Context, key string, payload []byte) error {
	entry := stateEntry{Key: key, Payload: string(payload), UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "state_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&entry).Error
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
