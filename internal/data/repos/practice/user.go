package practice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mastery-engine/internal/domain"
	"github.com/yungbote/mastery-engine/internal/pkg/logger"
)

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, user *domain.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.User, error)
	IncrementConceptsMastered(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error
	AddSessionMinutes(ctx context.Context, tx *gorm.DB, id uuid.UUID, minutes int) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(ctx context.Context, tx *gorm.DB, user *domain.User) error {
	t := tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	return t.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.User, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row domain.User
	err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *userRepo) IncrementConceptsMastered(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || delta == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumn("total_concepts_mastered", gorm.Expr("total_concepts_mastered + ?", delta)).Error
}

func (r *userRepo) AddSessionMinutes(ctx context.Context, tx *gorm.DB, id uuid.UUID, minutes int) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || minutes <= 0 {
		return nil
	}
	return t.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumn("total_session_time_minutes", gorm.Expr("total_session_time_minutes + ?", minutes)).Error
}
