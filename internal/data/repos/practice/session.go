package practice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mastery-engine/internal/domain"
	"github.com/yungbote/mastery-engine/internal/pkg/logger"
)

type SessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *domain.Session) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Session, error)
	Update(ctx context.Context, tx *gorm.DB, session *domain.Session) error
	ListByUserAndMaterialID(ctx context.Context, tx *gorm.DB, userID, materialID uuid.UUID) ([]*domain.Session, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

func (r *sessionRepo) Create(ctx context.Context, tx *gorm.DB, session *domain.Session) error {
	t := tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = now
	}
	session.UpdatedAt = now
	return t.WithContext(ctx).Create(session).Error
}

func (r *sessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Session, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row domain.Session
	err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *sessionRepo) Update(ctx context.Context, tx *gorm.DB, session *domain.Session) error {
	t := tx
	if t == nil {
		t = r.db
	}
	session.UpdatedAt = time.Now().UTC()
	return t.WithContext(ctx).Save(session).Error
}

func (r *sessionRepo) ListByUserAndMaterialID(ctx context.Context, tx *gorm.DB, userID, materialID uuid.UUID) ([]*domain.Session, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	out := []*domain.Session{}
	if userID == uuid.Nil || materialID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("user_id = ? AND material_id = ?", userID, materialID).
		Order("started_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
