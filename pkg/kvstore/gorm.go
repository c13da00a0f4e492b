package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ Store = (*GormStore)(nil)

// Entry is one persisted namespace row.
type Entry struct {
	Namespace string    `gorm:"column:namespace;primaryKey"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (Entry) TableName() string { return "kv_entries" }

// GormStore keeps namespaces in the kv_entries table.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, errors.New("gorm db required")
	}
	return &GormStore{db: db, now: time.Now}, nil
}

func (s *GormStore) Load(ctx context.Context, namespace string) ([]byte, error) {
	var row Entry
	err := s.db.WithContext(ctx).Where("namespace = ?", namespace).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", namespace, err)
	}
	return []byte(row.Value), nil
}

func (s *GormStore) Save(ctx context.Context, namespace string, value []byte) error {
	row := Entry{Namespace: namespace, Value: string(value), UpdatedAt: s.now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save %s: %w", namespace, err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, namespace string) error {
	if err := s.db.WithContext(ctx).Where("namespace = ?", namespace).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("delete %s: %w", namespace, err)
	}
	return nil
}
