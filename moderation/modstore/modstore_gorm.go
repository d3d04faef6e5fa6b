package modstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&QueueItem{}, &ModAction{}); err != nil {
		return nil, fmt.Errorf("migrating moderation tables: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) EnqueueItem(ctx context.Context, item *QueueItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *GormStore) GetItem(ctx context.Context, id uint) (*QueueItem, error) {
	var item QueueItem
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &item, nil
}

const severityOrderExpr = "CASE severity WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END DESC, created_at DESC, id DESC"

func (s *GormStore) ListItems(ctx context.Context, f ItemFilters) ([]*QueueItem, error) {
	q := s.db.WithContext(ctx).Model(&QueueItem{}).Order(severityOrderExpr)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Severity != "" {
		q = q.Where("severity = ?", f.Severity)
	}
	if f.ContentType != "" {
		q = q.Where("content_type = ?", f.ContentType)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var items []*QueueItem
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *GormStore) ResolveItem(ctx context.Context, id uint, status string, action *ModAction) (bool, error) {
	found := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item QueueItem
		err := tx.First(&item, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		} else if err != nil {
			return err
		}
		found = true
		if err := tx.Model(&item).Update("status", status).Error; err != nil {
			return err
		}
		if action.CreatedAt.IsZero() {
			action.CreatedAt = time.Now().UTC()
		}
		return tx.Create(action).Error
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (s *GormStore) AppendAction(ctx context.Context, action *ModAction) error {
	if action.CreatedAt.IsZero() {
		action.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(action).Error
}

func (s *GormStore) ListActions(ctx context.Context, contentID string) ([]*ModAction, error) {
	var actions []*ModAction
	err := s.db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("created_at DESC, id DESC").
		Find(&actions).Error
	if err != nil {
		return nil, err
	}
	return actions, nil
}

func (s *GormStore) CountItems(ctx context.Context, statuses ...string) (int, error) {
	q := s.db.WithContext(ctx).Model(&QueueItem{})
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (s *GormStore) CleanupReviewed(ctx context.Context, cutoff time.Time) (int, error) {
	res := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", StatusReviewed, cutoff).
		Delete(&QueueItem{})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}
