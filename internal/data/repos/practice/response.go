package practice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mastery-engine/internal/domain"
	"github.com/yungbote/mastery-engine/internal/pkg/logger"
)

type ResponseRepo interface {
	// Append writes one immutable row to the response log.
	Append(ctx context.Context, tx *gorm.DB, resp *domain.Response) error
	// ListBySessionID returns the session's log in sequence order.
	ListBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*domain.Response, error)
	// ListByUserAndConceptID returns the (user, concept) history across
	// sessions in time order, for the recall forecast.
	ListByUserAndConceptID(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) ([]*domain.Response, error)
}

type responseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResponseRepo(db *gorm.DB, baseLog *logger.Logger) ResponseRepo {
	return &responseRepo{db: db, log: baseLog.With("repo", "ResponseRepo")}
}

func (r *responseRepo) Append(ctx context.Context, tx *gorm.DB, resp *domain.Response) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if resp.ID == uuid.Nil {
		resp.ID = uuid.New()
	}
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = time.Now().UTC()
	}
	return t.WithContext(ctx).Create(resp).Error
}

func (r *responseRepo) ListBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*domain.Response, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	out := []*domain.Response{}
	if sessionID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("sequence_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *responseRepo) ListByUserAndConceptID(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) ([]*domain.Response, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	out := []*domain.Response{}
	if userID == uuid.Nil || conceptID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("user_id = ? AND concept_id = ?", userID, conceptID).
		Order("created_at ASC, sequence_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
