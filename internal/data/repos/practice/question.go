package practice

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mastery-engine/internal/domain"
	"github.com/yungbote/mastery-engine/internal/pkg/logger"
)

type QuestionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, questions []*domain.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Question, error)
	ListByConceptID(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID) ([]*domain.Question, error)
	ListByConceptAndMode(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID, mode string) ([]*domain.Question, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{db: db, log: baseLog.With("repo", "QuestionRepo")}
}

func (r *questionRepo) Create(ctx context.Context, tx *gorm.DB, questions []*domain.Question) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(questions) == 0 {
		return nil
	}
	return t.WithContext(ctx).Create(&questions).Error
}

func (r *questionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Question, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row domain.Question
	err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *questionRepo) ListByConceptID(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID) ([]*domain.Question, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	out := []*domain.Question{}
	if conceptID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("concept_id = ?", conceptID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questionRepo) ListByConceptAndMode(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID, mode string) ([]*domain.Question, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	out := []*domain.Question{}
	if conceptID == uuid.Nil || mode == "" {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("concept_id = ? AND mode = ?", conceptID, mode).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
