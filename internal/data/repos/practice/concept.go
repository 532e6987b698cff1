package practice

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mastery-engine/internal/domain"
	"github.com/yungbote/mastery-engine/internal/pkg/logger"
)

type ConceptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, concepts []*domain.Concept) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Concept, error)
	ListByMaterialID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) ([]*domain.Concept, error)
}

type conceptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptRepo(db *gorm.DB, baseLog *logger.Logger) ConceptRepo {
	return &conceptRepo{db: db, log: baseLog.With("repo", "ConceptRepo")}
}

func (r *conceptRepo) Create(ctx context.Context, tx *gorm.DB, concepts []*domain.Concept) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(concepts) == 0 {
		return nil
	}
	return t.WithContext(ctx).Create(&concepts).Error
}

func (r *conceptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Concept, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row domain.Concept
	err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *conceptRepo) ListByMaterialID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) ([]*domain.Concept, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	out := []*domain.Concept{}
	if materialID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("material_id = ?", materialID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
