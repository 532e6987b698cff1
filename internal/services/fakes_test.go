package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mastery-engine/internal/domain"
	pkgerr "github.com/yungbote/mastery-engine/internal/pkg/errors"
	"github.com/yungbote/mastery-engine/internal/realtime"
)

// fakeStore backs the in-memory repo fakes the orchestrator tests run
// against. Reads return copies so stale-write detection behaves like the
// real versioned UPDATE.
type fakeStore struct {
	mu sync.Mutex

	users     map[uuid.UUID]*domain.User
	materials map[uuid.UUID]*domain.Material
	concepts  []*domain.Concept
	questions []*domain.Question
	states    map[string]*domain.UserConceptState
	responses []*domain.Response
	sessions  map[uuid.UUID]*domain.Session

	// Makes the next versioned state write fail once.
	failStaleOnce bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[uuid.UUID]*domain.User),
		materials: make(map[uuid.UUID]*domain.Material),
		states:    make(map[string]*domain.UserConceptState),
		sessions:  make(map[uuid.UUID]*domain.Session),
	}
}

func stateKey(userID, conceptID uuid.UUID) string {
	return userID.String() + "|" + conceptID.String()
}

func copyState(s *domain.UserConceptState) *domain.UserConceptState {
	c := *s
	return &c
}

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	c := *user
	r.s.users[user.ID] = &c
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) IncrementConceptsMastered(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		u.TotalConceptsMastered += delta
	}
	return nil
}

func (r *fakeUserRepo) AddSessionMinutes(ctx context.Context, tx *gorm.DB, id uuid.UUID, minutes int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		u.TotalSessionTimeMinutes += minutes
	}
	return nil
}

type fakeMaterialRepo struct{ s *fakeStore }

func (r *fakeMaterialRepo) Create(ctx context.Context, tx *gorm.DB, m *domain.Material) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	c := *m
	r.s.materials[m.ID] = &c
	return nil
}

func (r *fakeMaterialRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Material, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.materials[id]
	if !ok {
		return nil, nil
	}
	c := *m
	return &c, nil
}

func (r *fakeMaterialRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]domain.Material, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Material
	for _, m := range r.s.materials {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMaterialRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m, ok := r.s.materials[id]; ok {
		m.Status = status
	}
	return nil
}

type fakeConceptRepo struct{ s *fakeStore }

func (r *fakeConceptRepo) Create(ctx context.Context, tx *gorm.DB, concepts []*domain.Concept) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range concepts {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		cp := *c
		r.s.concepts = append(r.s.concepts, &cp)
	}
	return nil
}

func (r *fakeConceptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Concept, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.concepts {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeConceptRepo) ListByMaterialID(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) ([]*domain.Concept, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Concept
	for _, c := range r.s.concepts {
		if c.MaterialID == materialID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeQuestionRepo struct{ s *fakeStore }

func (r *fakeQuestionRepo) Create(ctx context.Context, tx *gorm.DB, questions []*domain.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, q := range questions {
		if q.ID == uuid.Nil {
			q.ID = uuid.New()
		}
		cp := *q
		r.s.questions = append(r.s.questions, &cp)
	}
	return nil
}

func (r *fakeQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, q := range r.s.questions {
		if q.ID == id {
			cp := *q
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeQuestionRepo) ListByConceptID(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID) ([]*domain.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Question
	for _, q := range r.s.questions {
		if q.ConceptID == conceptID {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) ListByConceptAndMode(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID, mode string) ([]*domain.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Question
	for _, q := range r.s.questions {
		if q.ConceptID == conceptID && q.Mode == mode {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeStateRepo struct{ s *fakeStore }

func (r *fakeStateRepo) Get(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) (*domain.UserConceptState, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.states[stateKey(userID, conceptID)]
	if !ok {
		return nil, nil
	}
	return copyState(st), nil
}

func (r *fakeStateRepo) Create(ctx context.Context, tx *gorm.DB, state *domain.UserConceptState) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if state.ID == uuid.Nil {
		state.ID = uuid.New()
	}
	r.s.states[stateKey(state.UserID, state.ConceptID)] = copyState(state)
	return nil
}

func (r *fakeStateRepo) UpdateVersioned(ctx context.Context, tx *gorm.DB, state *domain.UserConceptState) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failStaleOnce {
		r.s.failStaleOnce = false
		return pkgerr.ErrStaleStateWrite
	}
	stored, ok := r.s.states[stateKey(state.UserID, state.ConceptID)]
	if !ok || stored.Version != state.Version {
		return pkgerr.ErrStaleStateWrite
	}
	state.Version++
	r.s.states[stateKey(state.UserID, state.ConceptID)] = copyState(state)
	return nil
}

func (r *fakeStateRepo) ListByUserAndConceptIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptIDs []uuid.UUID) ([]*domain.UserConceptState, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.UserConceptState
	for _, cid := range conceptIDs {
		if st, ok := r.s.states[stateKey(userID, cid)]; ok {
			out = append(out, copyState(st))
		}
	}
	return out, nil
}

type fakeResponseRepo struct{ s *fakeStore }

func (r *fakeResponseRepo) Append(ctx context.Context, tx *gorm.DB, resp *domain.Response) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if resp.ID == uuid.Nil {
		resp.ID = uuid.New()
	}
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = time.Now().UTC()
	}
	cp := *resp
	r.s.responses = append(r.s.responses, &cp)
	return nil
}

func (r *fakeResponseRepo) ListBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*domain.Response, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Response
	for _, resp := range r.s.responses {
		if resp.SessionID == sessionID {
			cp := *resp
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SequenceNumber < out[j].SequenceNumber })
	return out, nil
}

func (r *fakeResponseRepo) ListByUserAndConceptID(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) ([]*domain.Response, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Response
	for _, resp := range r.s.responses {
		if resp.UserID == userID && resp.ConceptID == conceptID {
			cp := *resp
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeSessionRepo struct{ s *fakeStore }

func (r *fakeSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *domain.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	cp := *session
	r.s.sessions[session.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, tx *gorm.DB, session *domain.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *session
	r.s.sessions[session.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) ListByUserAndMaterialID(ctx context.Context, tx *gorm.DB, userID, materialID uuid.UUID) ([]*domain.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Session
	for _, s := range r.s.sessions {
		if s.UserID == userID && s.MaterialID == materialID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

// recordingBus captures published events for assertions.
type recordingBus struct {
	mu     sync.Mutex
	events []realtime.Message
}

func (b *recordingBus) Publish(ctx context.Context, msg realtime.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, msg)
	return nil
}

func (b *recordingBus) StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error {
	return nil
}

func (b *recordingBus) Close() error { return nil }

func (b *recordingBus) byEvent(event realtime.Event) []realtime.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []realtime.Message
	for _, m := range b.events {
		if m.Event == event {
			out = append(out, m)
		}
	}
	return out
}
