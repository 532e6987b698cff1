package services

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mastery-engine/internal/data/repos/practice"
	"github.com/yungbote/mastery-engine/internal/domain"
	"github.com/yungbote/mastery-engine/internal/engine"
	pkgerr "github.com/yungbote/mastery-engine/internal/pkg/errors"
	"github.com/yungbote/mastery-engine/internal/pkg/logger"
)

// QuestionProvider serves a question for a (concept, mode) and grades the
// answer against it. Implementations track what a session has already
// seen so repeats only happen once a pool is exhausted.
type QuestionProvider interface {
	Next(ctx context.Context, tx *gorm.DB, sessionID, conceptID uuid.UUID, mode engine.Mode) (*domain.Question, error)
	Grade(q *domain.Question, answer string) (correct bool, partial bool)
	Forget(sessionID uuid.UUID)
}

type providerSessionState struct {
	asked map[uuid.UUID]bool
	// serve-order clock per (concept, format), for the LRU fallback
	formatServed map[string]int
	clock        int
}

type questionProvider struct {
	log       *logger.Logger
	questions practice.QuestionRepo

	mu       sync.Mutex
	sessions map[uuid.UUID]*providerSessionState
}

func NewQuestionProvider(baseLog *logger.Logger, questions practice.QuestionRepo) QuestionProvider {
	return &questionProvider{
		log:       baseLog.With("service", "QuestionProvider"),
		questions: questions,
		sessions:  make(map[uuid.UUID]*providerSessionState),
	}
}

func (p *questionProvider) state(sessionID uuid.UUID) *providerSessionState {
	st, ok := p.sessions[sessionID]
	if !ok {
		st = &providerSessionState{
			asked:        make(map[uuid.UUID]bool),
			formatServed: make(map[string]int),
		}
		p.sessions[sessionID] = st
	}
	return st
}

func (p *questionProvider) Next(ctx context.Context, tx *gorm.DB, sessionID, conceptID uuid.UUID, mode engine.Mode) (*domain.Question, error) {
	pool, err := p.questions.ListByConceptAndMode(ctx, tx, conceptID, string(mode))
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.state(sessionID)

	if len(pool) == 0 {
		// No questions authored for this mode: fall back to the concept's
		// least-recently-used format instead of failing the session.
		all, err := p.questions.ListByConceptID(ctx, tx, conceptID)
		if err != nil {
			return nil, err
		}
		if len(all) == 0 {
			return nil, pkgerr.ErrNoQuestionAvailable
		}
		pool = p.lruFormatPool(st, conceptID, all)
	}

	q := pickUnasked(st, pool)
	if q == nil {
		// Pool exhausted for this session; reset and repeat.
		for _, cand := range pool {
			delete(st.asked, cand.ID)
		}
		q = pool[0]
	}

	st.asked[q.ID] = true
	st.clock++
	st.formatServed[formatKey(conceptID, q.Format)] = st.clock
	return q, nil
}

// lruFormatPool narrows the concept's full pool to its least recently
// served format.
func (p *questionProvider) lruFormatPool(st *providerSessionState, conceptID uuid.UUID, all []*domain.Question) []*domain.Question {
	byFormat := make(map[string][]*domain.Question)
	formats := make([]string, 0, 4)
	for _, q := range all {
		if _, ok := byFormat[q.Format]; !ok {
			formats = append(formats, q.Format)
		}
		byFormat[q.Format] = append(byFormat[q.Format], q)
	}

	best := formats[0]
	bestServed := st.formatServed[formatKey(conceptID, best)]
	for _, f := range formats[1:] {
		if served := st.formatServed[formatKey(conceptID, f)]; served < bestServed {
			best, bestServed = f, served
		}
	}
	return byFormat[best]
}

func pickUnasked(st *providerSessionState, pool []*domain.Question) *domain.Question {
	for _, q := range pool {
		if !st.asked[q.ID] {
			return q
		}
	}
	return nil
}

func formatKey(conceptID uuid.UUID, format string) string {
	return conceptID.String() + "|" + format
}

// Grade checks a submitted answer against the question's answer key:
// normalized exact match is correct, substantial word overlap is partial
// credit. Free-text grading beyond that is out of scope here.
func (p *questionProvider) Grade(q *domain.Question, answer string) (bool, bool) {
	key := normalizeAnswer(q.AnswerText)
	got := normalizeAnswer(answer)
	if key == "" || got == "" {
		return false, false
	}
	if got == key {
		return true, false
	}

	keyWords := strings.Fields(key)
	gotWords := make(map[string]bool)
	for _, w := range strings.Fields(got) {
		gotWords[w] = true
	}
	overlap := 0
	for _, w := range keyWords {
		if gotWords[w] {
			overlap++
		}
	}
	if float64(overlap)/float64(len(keyWords)) >= 0.6 {
		return false, true
	}
	return false, false
}

func (p *questionProvider) Forget(sessionID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sessions, sessionID)
}

func normalizeAnswer(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
