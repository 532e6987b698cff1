package practice

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/mastery-engine/internal/data/repos/testutil"
	"github.com/yungbote/mastery-engine/internal/domain"
)

func TestConceptRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewConceptRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "conceptrepo@example.com")
	m := testutil.SeedMaterial(t, ctx, tx, u.ID)

	batch := []*domain.Concept{
		{MaterialID: m.ID, Name: "entropy", Complexity: 2},
		{MaterialID: m.ID, Name: "enthalpy", Complexity: 3},
	}
	if err := repo.Create(ctx, tx, batch); err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, c := range batch {
		if c.ID == uuid.Nil {
			t.Fatalf("Create did not assign an ID")
		}
	}

	got, err := repo.GetByID(ctx, tx, batch[0].ID)
	if err != nil || got == nil || got.Name != "entropy" {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}

	rows, err := repo.ListByMaterialID(ctx, tx, m.ID)
	if err != nil {
		t.Fatalf("ListByMaterialID: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ListByMaterialID: got %d rows, want 2", len(rows))
	}
}

func TestQuestionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewQuestionRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "questionrepo@example.com")
	m := testutil.SeedMaterial(t, ctx, tx, u.ID)
	c := testutil.SeedConcept(t, ctx, tx, m.ID, "valence")

	testutil.SeedQuestion(t, ctx, tx, c.ID, "rapid_fire", "verbal")
	testutil.SeedQuestion(t, ctx, tx, c.ID, "rapid_fire", "symbolic")
	testutil.SeedQuestion(t, ctx, tx, c.ID, "explain_back", "verbal")

	all, err := repo.ListByConceptID(ctx, tx, c.ID)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListByConceptID: rows=%d err=%v", len(all), err)
	}

	rapid, err := repo.ListByConceptAndMode(ctx, tx, c.ID, "rapid_fire")
	if err != nil || len(rapid) != 2 {
		t.Fatalf("ListByConceptAndMode: rows=%d err=%v", len(rapid), err)
	}
	for _, q := range rapid {
		if q.Mode != "rapid_fire" {
			t.Fatalf("ListByConceptAndMode returned mode %q", q.Mode)
		}
	}
}
