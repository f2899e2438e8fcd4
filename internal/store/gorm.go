package store

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iamdashante1/mb/models"
)

// GormStore keeps each submission kind in its own table.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

// OpenPostgres connects using a libpq style DSN or URL.
func OpenPostgres(dsn string, debug bool) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewGormStore(db), nil
}

// OpenSQLite opens (or creates) a database file. ":memory:" is accepted.
func OpenSQLite(path string, debug bool) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// every pooled connection to ":memory:" would see its own empty database
	if path == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return NewGormStore(db), nil
}

func gormConfig(debug bool) *gorm.Config {
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	return &gorm.Config{Logger: logger.Default.LogMode(level)}
}

func (s *GormStore) Insert(ctx context.Context, sub *models.Submission) error {
	if err := prepare(sub, s.now()); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Table(sub.Kind.Collection()).Create(sub).Error; err != nil {
		return persistenceErr("insert", err)
	}

	return nil
}

func (s *GormStore) List(ctx context.Context, kind models.Kind) ([]models.Submission, error) {
	var res []models.Submission

	err := s.db.WithContext(ctx).
		Table(kind.Collection()).
		Order("created_at desc").
		Find(&res).Error
	if err != nil {
		return nil, persistenceErr("list "+kind.Collection(), err)
	}

	for i := range res {
		res[i].Kind = kind
		if res[i].Attachments == nil {
			res[i].Attachments = []models.Attachment{}
		}
	}

	return res, nil
}

func (s *GormStore) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)

	for _, kind := range models.Kinds {
		table := kind.Collection()

		if err := db.Table(table).AutoMigrate(&models.Submission{}); err != nil {
			return persistenceErr("migrate "+table, err)
		}

		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_created_at ON %s (created_at DESC)", table, table)
		if err := db.Exec(stmt).Error; err != nil {
			return persistenceErr("index "+table, err)
		}
	}

	return nil
}

func (s *GormStore) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
