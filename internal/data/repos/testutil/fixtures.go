package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mastery-engine/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *domain.User {
	tb.Helper()
	now := time.Now().UTC()
	u := &domain.User{
		ID:        uuid.New(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedMaterial(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *domain.Material {
	tb.Helper()
	now := time.Now().UTC()
	m := &domain.Material{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     "material",
		Status:    domain.MaterialStatusReady,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed material: %v", err)
	}
	return m
}

func SeedConcept(tb testing.TB, ctx context.Context, tx *gorm.DB, materialID uuid.UUID, name string) *domain.Concept {
	tb.Helper()
	now := time.Now().UTC()
	c := &domain.Concept{
		ID:         uuid.New(),
		MaterialID: materialID,
		Name:       name,
		Definition: "definition of " + name,
		Complexity: 1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed concept: %v", err)
	}
	return c
}

func SeedQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, conceptID uuid.UUID, mode, format string) *domain.Question {
	tb.Helper()
	now := time.Now().UTC()
	q := &domain.Question{
		ID:           uuid.New(),
		ConceptID:    conceptID,
		Mode:         mode,
		Format:       format,
		QuestionText: "what is it?",
		AnswerText:   "it",
		Difficulty:   5,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}

func SeedConceptState(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) *domain.UserConceptState {
	tb.Helper()
	now := time.Now().UTC()
	s := &domain.UserConceptState{
		ID:        uuid.New(),
		UserID:    userID,
		ConceptID: conceptID,
		Phase:     "untouched",
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed concept state: %v", err)
	}
	return s
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, materialID uuid.UUID) *domain.Session {
	tb.Helper()
	now := time.Now().UTC()
	s := &domain.Session{
		ID:         uuid.New(),
		UserID:     userID,
		MaterialID: materialID,
		Status:     domain.SessionStatusActive,
		StartedAt:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}
