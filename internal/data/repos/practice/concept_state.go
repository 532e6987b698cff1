package practice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mastery-engine/internal/domain"
	pkgerr "github.com/yungbote/mastery-engine/internal/pkg/errors"
	"github.com/yungbote/mastery-engine/internal/pkg/logger"
)

type ConceptStateRepo interface {
	Get(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) (*domain.UserConceptState, error)
	Create(ctx context.Context, tx *gorm.DB, state *domain.UserConceptState) error
	// UpdateVersioned writes the full row guarded by the version the
	// caller read. Returns ErrStaleStateWrite when another writer got
	// there first; the row is left untouched in that case.
	UpdateVersioned(ctx context.Context, tx *gorm.DB, state *domain.UserConceptState) error
	ListByUserAndConceptIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptIDs []uuid.UUID) ([]*domain.UserConceptState, error)
}

type conceptStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptStateRepo(db *gorm.DB, baseLog *logger.Logger) ConceptStateRepo {
	return &conceptStateRepo{db: db, log: baseLog.With("repo", "ConceptStateRepo")}
}

func (r *conceptStateRepo) Get(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) (*domain.UserConceptState, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil || conceptID == uuid.Nil {
		return nil, nil
	}
	var row domain.UserConceptState
	err := t.WithContext(ctx).
		Where("user_id = ? AND concept_id = ?", userID, conceptID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *conceptStateRepo) Create(ctx context.Context, tx *gorm.DB, state *domain.UserConceptState) error {
	t := tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	if state.ID == uuid.Nil {
		state.ID = uuid.New()
	}
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}
	state.UpdatedAt = now
	return t.WithContext(ctx).Create(state).Error
}

func (r *conceptStateRepo) UpdateVersioned(ctx context.Context, tx *gorm.DB, state *domain.UserConceptState) error {
	t := tx
	if t == nil {
		t = r.db
	}
	readVersion := state.Version
	state.Version = readVersion + 1
	state.UpdatedAt = time.Now().UTC()

	res := t.WithContext(ctx).
		Model(&domain.UserConceptState{}).
		Where("id = ? AND version = ?", state.ID, readVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(state)
	if res.Error != nil {
		state.Version = readVersion
		return res.Error
	}
	if res.RowsAffected == 0 {
		state.Version = readVersion
		return pkgerr.ErrStaleStateWrite
	}
	return nil
}

func (r *conceptStateRepo) ListByUserAndConceptIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptIDs []uuid.UUID) ([]*domain.UserConceptState, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	out := []*domain.UserConceptState{}
	if userID == uuid.Nil || len(conceptIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("user_id = ? AND concept_id IN ?", userID, conceptIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
