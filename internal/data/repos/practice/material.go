package practice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mastery-engine/internal/domain"
	"github.com/yungbote/mastery-engine/internal/pkg/logger"
)

type MaterialRepo interface {
	Create(ctx context.Context, tx *gorm.DB, material *domain.Material) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Material, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]domain.Material, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error
}

type materialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	return &materialRepo{db: db, log: baseLog.With("repo", "MaterialRepo")}
}

func (r *materialRepo) Create(ctx context.Context, tx *gorm.DB, material *domain.Material) error {
	t := tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	if material.ID == uuid.Nil {
		material.ID = uuid.New()
	}
	if material.CreatedAt.IsZero() {
		material.CreatedAt = now
	}
	material.UpdatedAt = now
	return t.WithContext(ctx).Create(material).Error
}

func (r *materialRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Material, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row domain.Material
	err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *materialRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]domain.Material, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var rows []domain.Material
	err := t.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *materialRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(ctx).
		Model(&domain.Material{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}
