package practice

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/mastery-engine/internal/data/repos/testutil"
	"github.com/yungbote/mastery-engine/internal/domain"
	pkgerr "github.com/yungbote/mastery-engine/internal/pkg/errors"
)

func TestConceptStateRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewConceptStateRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "conceptstaterepo@example.com")
	m := testutil.SeedMaterial(t, ctx, tx, u.ID)
	c := testutil.SeedConcept(t, ctx, tx, m.ID, "photosynthesis")

	if got, err := repo.Get(ctx, tx, u.ID, c.ID); err != nil || got != nil {
		t.Fatalf("Get(missing): got=%v err=%v", got, err)
	}

	st := &domain.UserConceptState{
		UserID:    u.ID,
		ConceptID: c.ID,
		Phase:     "untouched",
		Version:   1,
	}
	if err := repo.Create(ctx, tx, st); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if st.ID == uuid.Nil {
		t.Fatalf("Create did not assign an ID")
	}

	got, err := repo.Get(ctx, tx, u.ID, c.ID)
	if err != nil || got == nil || got.ID != st.ID {
		t.Fatalf("Get(after create): got=%v err=%v", got, err)
	}

	got.Phase = "learning"
	got.TotalAttempts = 1
	got.CorrectAttempts = 1
	got.ConsecutivePerfect = 1
	if err := repo.UpdateVersioned(ctx, tx, got); err != nil {
		t.Fatalf("UpdateVersioned: %v", err)
	}
	if got.Version != 2 {
		t.Fatalf("UpdateVersioned version: got=%d want=2", got.Version)
	}

	fresh, err := repo.Get(ctx, tx, u.ID, c.ID)
	if err != nil || fresh == nil {
		t.Fatalf("Get(after update): got=%v err=%v", fresh, err)
	}
	if fresh.Phase != "learning" || fresh.TotalAttempts != 1 || fresh.Version != 2 {
		t.Fatalf("update verify: phase=%q attempts=%d version=%d", fresh.Phase, fresh.TotalAttempts, fresh.Version)
	}
}

func TestConceptStateRepoStaleWrite(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewConceptStateRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "conceptstatestale@example.com")
	m := testutil.SeedMaterial(t, ctx, tx, u.ID)
	c := testutil.SeedConcept(t, ctx, tx, m.ID, "osmosis")

	st := &domain.UserConceptState{UserID: u.ID, ConceptID: c.ID, Phase: "untouched", Version: 1}
	if err := repo.Create(ctx, tx, st); err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, _ := repo.Get(ctx, tx, u.ID, c.ID)
	second, _ := repo.Get(ctx, tx, u.ID, c.ID)

	first.TotalAttempts = 1
	if err := repo.UpdateVersioned(ctx, tx, first); err != nil {
		t.Fatalf("UpdateVersioned(first): %v", err)
	}

	second.TotalAttempts = 99
	err := repo.UpdateVersioned(ctx, tx, second)
	if !errors.Is(err, pkgerr.ErrStaleStateWrite) {
		t.Fatalf("UpdateVersioned(stale): err=%v want ErrStaleStateWrite", err)
	}
	// The stale copy keeps its original version so the caller can reload
	// and retry.
	if second.Version != 1 {
		t.Fatalf("stale copy version: got=%d want=1", second.Version)
	}

	fresh, _ := repo.Get(ctx, tx, u.ID, c.ID)
	if fresh.TotalAttempts != 1 {
		t.Fatalf("stale write leaked: attempts=%d", fresh.TotalAttempts)
	}
}

func TestConceptStateRepoListByUserAndConceptIDs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewConceptStateRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "conceptstatelist@example.com")
	m := testutil.SeedMaterial(t, ctx, tx, u.ID)
	c1 := testutil.SeedConcept(t, ctx, tx, m.ID, "mitosis")
	c2 := testutil.SeedConcept(t, ctx, tx, m.ID, "meiosis")
	c3 := testutil.SeedConcept(t, ctx, tx, m.ID, "diffusion")

	for _, cid := range []uuid.UUID{c1.ID, c2.ID} {
		testutil.SeedConceptState(t, ctx, tx, u.ID, cid)
	}

	rows, err := repo.ListByUserAndConceptIDs(ctx, tx, u.ID, []uuid.UUID{c1.ID, c2.ID, c3.ID})
	if err != nil {
		t.Fatalf("ListByUserAndConceptIDs: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ListByUserAndConceptIDs: got %d rows, want 2", len(rows))
	}

	rows, err = repo.ListByUserAndConceptIDs(ctx, tx, u.ID, nil)
	if err != nil || len(rows) != 0 {
		t.Fatalf("ListByUserAndConceptIDs(empty ids): rows=%d err=%v", len(rows), err)
	}
}
