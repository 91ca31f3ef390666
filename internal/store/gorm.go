package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/edumentor-backend/internal/platform/logger"
)

// kvRecord is the single relational table backing the store. Values are JSON
// blobs; the database never sees entity structure.
type kvRecord struct {
	Kind  string         `gorm:"primaryKey;size:64"`
	ID    string         `gorm:"primaryKey;size:64"`
	Value datatypes.JSON `gorm:"not null"`
}

func (kvRecord) TableName() string { return "kv_records" }

type gormStore struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewGorm opens a SQL-backed store. DB_DRIVER selects postgres or sqlite;
// DATABASE_URL carries the DSN (a file path for sqlite).
func NewGorm(baseLog *logger.Logger) (KV, error) {
	log := baseLog.With("store", "gorm")
	driver := os.Getenv("DB_DRIVER")
	dsn := os.Getenv("DATABASE_URL")

	var dialector gorm.Dialector
	switch driver {
	case "", "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for postgres")
		}
		dialector = postgres.Open(dsn)
	case "sqlite":
		if dsn == "" {
			dsn = "edumentor.db"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&kvRecord{}); err != nil {
		return nil, fmt.Errorf("migrate kv_records: %w", err)
	}
	log.Info("Connected to database", "driver", driver)
	return &gormStore{db: db, log: log}, nil
}

func (s *gormStore) Get(ctx context.Context, kind, id string) ([]byte, error) {
	var rec kvRecord
	err := s.db.WithContext(ctx).
		Where("kind = ? AND id = ?", kind, id).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", kind, id, err)
	}
	return []byte(rec.Value), nil
}

func (s *gormStore) Put(ctx context.Context, kind, id string, value []byte) error {
	rec := kvRecord{Kind: kind, ID: id, Value: datatypes.JSON(value)}
	err := s.db.WithContext(ctx).
		Save(&rec).Error
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", kind, id, err)
	}
	return nil
}

func (s *gormStore) Delete(ctx context.Context, kind, id string) error {
	err := s.db.WithContext(ctx).
		Where("kind = ? AND id = ?", kind, id).
		Delete(&kvRecord{}).Error
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", kind, id, err)
	}
	return nil
}

func (s *gormStore) List(ctx context.Context, kind string) ([][]byte, error) {
	var recs []kvRecord
	err := s.db.WithContext(ctx).
		Where("kind = ?", kind).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	out := make([][]byte, 0, len(recs))
	for _, r := range recs {
		out = append(out, []byte(r.Value))
	}
	return out, nil
}

func (s *gormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
