package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	redisclient "github.com/yungbote/mastery-engine/internal/clients/redis"
	"github.com/yungbote/mastery-engine/internal/data/repos/practice"
	"github.com/yungbote/mastery-engine/internal/domain"
	"github.com/yungbote/mastery-engine/internal/engine"
	pkgerr "github.com/yungbote/mastery-engine/internal/pkg/errors"
	"github.com/yungbote/mastery-engine/internal/pkg/logger"
	"github.com/yungbote/mastery-engine/internal/realtime"
	"github.com/yungbote/mastery-engine/internal/realtime/bus"
)

const (
	sessionLockTTL = 2 * time.Hour
	// Hesitations shorter than this are normal thinking time.
	hesitationThresholdMs = 3000
	// Trailing protocol actions kept for the anxiety window.
	actionHistoryCap = 50
)

// SessionService drives the practice protocol loop: serve, grade, update,
// evaluate, select. One runtime per active session.
type SessionService interface {
	Start(ctx context.Context, userID, materialID uuid.UUID) (*QuestionPresented, error)
	Next(ctx context.Context, sessionID uuid.UUID) (*QuestionPresented, error)
	Answer(ctx context.Context, sessionID uuid.UUID, in AnswerInput) (*Feedback, error)
	Skip(ctx context.Context, sessionID uuid.UUID) (*Feedback, error)
	Hint(ctx context.Context, sessionID uuid.UUID) (*Aid, error)
	Peek(ctx context.Context, sessionID uuid.UUID) (*Aid, error)
	End(ctx context.Context, sessionID uuid.UUID) (*SessionSummary, error)
	Abandon(ctx context.Context, sessionID uuid.UUID) error
	Snapshot(ctx context.Context, sessionID uuid.UUID) (*SessionSnapshot, error)
}

type servedTurn struct {
	conceptID  uuid.UUID
	questionID uuid.UUID
	mode       engine.Mode
	format     string
	question   *domain.Question
	aided      bool
}

type sessionRuntime struct {
	mu sync.Mutex

	userID     uuid.UUID
	materialID uuid.UUID

	conceptIDs   []uuid.UUID
	conceptNames map[uuid.UUID]string
	conceptDefs  map[uuid.UUID]string

	recentActions []engine.Action
	lastConceptID uuid.UUID
	seq           int
	current       *servedTurn
}

type sessionService struct {
	db     *gorm.DB
	log    *logger.Logger
	policy engine.Policy

	users     practice.UserRepo
	materials practice.MaterialRepo
	concepts  practice.ConceptRepo
	states    practice.ConceptStateRepo
	responses practice.ResponseRepo
	sessions  practice.SessionRepo

	provider QuestionProvider
	lock     redisclient.SessionLock
	bus      bus.Bus

	mu     sync.Mutex
	active map[uuid.UUID]*sessionRuntime
}

type SessionServiceDeps struct {
	DB        *gorm.DB
	Policy    engine.Policy
	Users     practice.UserRepo
	Materials practice.MaterialRepo
	Concepts  practice.ConceptRepo
	States    practice.ConceptStateRepo
	Responses practice.ResponseRepo
	Sessions  practice.SessionRepo
	Provider  QuestionProvider
	Lock      redisclient.SessionLock
	Bus       bus.Bus
}

func NewSessionService(baseLog *logger.Logger, d SessionServiceDeps) SessionService {
	return &sessionService{
		db:        d.DB,
		log:       baseLog.With("service", "SessionService"),
		policy:    d.Policy,
		users:     d.Users,
		materials: d.Materials,
		concepts:  d.Concepts,
		states:    d.States,
		responses: d.Responses,
		sessions:  d.Sessions,
		provider:  d.Provider,
		lock:      d.Lock,
		bus:       d.Bus,
		active:    make(map[uuid.UUID]*sessionRuntime),
	}
}

func (s *sessionService) Start(ctx context.Context, userID, materialID uuid.UUID) (*QuestionPresented, error) {
	if userID == uuid.Nil || materialID == uuid.Nil {
		return nil, pkgerr.ErrInvalidArgument
	}

	if err := s.lock.Acquire(ctx, userID, sessionLockTTL); err != nil {
		return nil, err
	}

	var (
		user     *domain.User
		material *domain.Material
		concepts []*domain.Concept
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.users.GetByID(gctx, nil, userID)
		return err
	})
	g.Go(func() error {
		var err error
		material, err = s.materials.GetByID(gctx, nil, materialID)
		return err
	})
	g.Go(func() error {
		var err error
		concepts, err = s.concepts.ListByMaterialID(gctx, nil, materialID)
		return err
	})
	if err := g.Wait(); err != nil {
		_ = s.lock.Release(ctx, userID)
		return nil, err
	}
	if user == nil || material == nil {
		_ = s.lock.Release(ctx, userID)
		return nil, pkgerr.ErrNotFound
	}
	if len(concepts) == 0 {
		_ = s.lock.Release(ctx, userID)
		return nil, fmt.Errorf("%w: material has no concepts", pkgerr.ErrInvalidArgument)
	}

	now := time.Now().UTC()
	session := &domain.Session{
		UserID:     userID,
		MaterialID: materialID,
		Status:     domain.SessionStatusActive,
		StartedAt:  now,
	}
	if err := s.sessions.Create(ctx, nil, session); err != nil {
		_ = s.lock.Release(ctx, userID)
		return nil, err
	}

	rt := &sessionRuntime{
		userID:       userID,
		materialID:   materialID,
		conceptIDs:   make([]uuid.UUID, 0, len(concepts)),
		conceptNames: make(map[uuid.UUID]string, len(concepts)),
		conceptDefs:  make(map[uuid.UUID]string, len(concepts)),
	}
	for _, c := range concepts {
		rt.conceptIDs = append(rt.conceptIDs, c.ID)
		rt.conceptNames[c.ID] = c.Name
		rt.conceptDefs[c.ID] = c.Definition
	}

	s.mu.Lock()
	s.active[session.ID] = rt
	s.mu.Unlock()

	s.log.Info("session started",
		"session_id", session.ID, "user_id", userID,
		"material_id", materialID, "concepts", len(concepts))

	rt.mu.Lock()
	defer rt.mu.Unlock()
	q, err := s.serveNext(ctx, session.ID, rt)
	if err != nil {
		s.teardown(ctx, session.ID, rt)
		return nil, err
	}
	return q, nil
}

func (s *sessionService) Next(ctx context.Context, sessionID uuid.UUID) (*QuestionPresented, error) {
	rt, err := s.runtime(sessionID)
	if err != nil {
		return nil, err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.current != nil {
		// Serving again without an answer abandons the in-flight question;
		// it leaves no trace in the log.
		rt.current = nil
	}
	return s.serveNext(ctx, sessionID, rt)
}

// serveNext runs the selector and presents a question. Caller holds rt.mu.
func (s *sessionService) serveNext(ctx context.Context, sessionID uuid.UUID, rt *sessionRuntime) (*QuestionPresented, error) {
	states, err := s.stateIndex(ctx, rt)
	if err != nil {
		return nil, err
	}

	views := make([]engine.ConceptView, 0, len(rt.conceptIDs))
	for _, cid := range rt.conceptIDs {
		views = append(views, s.conceptView(cid, states[cid]))
	}

	decision, ok := engine.NextTurn(engine.TurnInput{
		Concepts:      views,
		RecentActions: rt.recentActions,
		LastConceptID: rt.lastConceptID,
		Now:           time.Now().UTC(),
	}, s.policy)
	if !ok {
		if _, err := s.close(ctx, sessionID, rt, domain.SessionStatusCompleted); err != nil {
			return nil, err
		}
		return &QuestionPresented{SessionID: sessionID, SessionComplete: true}, nil
	}

	q, err := s.provider.Next(ctx, nil, sessionID, decision.ConceptID, decision.Mode)
	if err != nil {
		return nil, err
	}

	prevMode := ""
	if st := states[decision.ConceptID]; st != nil {
		prevMode = st.CurrentMode
	}
	s.recordMode(ctx, states[decision.ConceptID], decision.Mode)

	rt.current = &servedTurn{
		conceptID:  decision.ConceptID,
		questionID: q.ID,
		mode:       decision.Mode,
		format:     q.Format,
		question:   q,
	}

	out := &QuestionPresented{
		SessionID:    sessionID,
		ConceptID:    decision.ConceptID,
		ConceptName:  rt.conceptNames[decision.ConceptID],
		QuestionID:   q.ID,
		Mode:         string(decision.Mode),
		Format:       q.Format,
		Question:     q.QuestionText,
		Rule:         string(decision.Rule),
		Reason:       decision.Reason,
		ModeSwitched: prevMode != "" && prevMode != string(decision.Mode),
		PreviousMode: prevMode,
	}
	s.publish(ctx, sessionID, realtime.EventQuestionPresented, out)
	if out.ModeSwitched {
		s.publish(ctx, sessionID, realtime.EventModeSwitched, map[string]any{
			"concept_id": decision.ConceptID,
			"from":       prevMode,
			"to":         string(decision.Mode),
			"reason":     decision.Reason,
		})
	}
	return out, nil
}

func (s *sessionService) Answer(ctx context.Context, sessionID uuid.UUID, in AnswerInput) (*Feedback, error) {
	rt, err := s.runtime(sessionID)
	if err != nil {
		return nil, err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.current == nil {
		return nil, fmt.Errorf("%w: no question in flight", pkgerr.ErrInvalidArgument)
	}

	turn := rt.current
	correct, partial := s.provider.Grade(turn.question, in.Text)
	now := time.Now().UTC()

	rt.seq++
	resp := &domain.Response{
		UserID:         rt.userID,
		ConceptID:      turn.conceptID,
		QuestionID:     &turn.questionID,
		SessionID:      sessionID,
		Mode:           string(turn.mode),
		Format:         turn.format,
		AnswerText:     in.Text,
		Correct:        correct,
		Partial:        partial,
		Aided:          turn.aided,
		ResponseTimeMs: in.ResponseTimeMs,
		HesitationMs:   in.HesitationMs,
		SequenceNumber: rt.seq,
	}
	if err := s.responses.Append(ctx, nil, resp); err != nil {
		return nil, err
	}

	state, criteria, masteredNow, err := s.applyResponse(ctx, rt, resp, now)
	if err != nil {
		return nil, err
	}

	if err := s.bumpSessionCounters(ctx, sessionID, correct); err != nil {
		s.log.Warn("session counter update failed", "session_id", sessionID, "error", err)
	}

	rt.recentActions = appendAction(rt.recentActions, engine.ActionAnswer)
	rt.lastConceptID = turn.conceptID
	rt.current = nil

	fb := &Feedback{
		SessionID:       sessionID,
		ConceptID:       turn.conceptID,
		Correct:         correct,
		Partial:         partial,
		Phase:           state.Phase,
		Streak:          state.ConsecutivePerfect,
		Accuracy:        state.Accuracy(),
		PredictedRecall: criteria.PredictedRecall,
		MasteredNow:     masteredNow,
	}
	if !correct {
		fb.CorrectAnswer = turn.question.AnswerText
	}

	if masteredNow {
		s.publish(ctx, sessionID, realtime.EventMasteryAchieved, map[string]any{
			"concept_id":   turn.conceptID,
			"concept_name": rt.conceptNames[turn.conceptID],
			"mastered_at":  now,
		})
		done, err := s.allMastered(ctx, rt)
		if err != nil {
			return nil, err
		}
		if done {
			if _, err := s.close(ctx, sessionID, rt, domain.SessionStatusCompleted); err != nil {
				return nil, err
			}
			fb.SessionComplete = true
		}
	}

	s.publish(ctx, sessionID, realtime.EventFeedback, fb)
	return fb, nil
}

func (s *sessionService) Skip(ctx context.Context, sessionID uuid.UUID) (*Feedback, error) {
	rt, err := s.runtime(sessionID)
	if err != nil {
		return nil, err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.current == nil {
		return nil, fmt.Errorf("%w: no question in flight", pkgerr.ErrInvalidArgument)
	}

	turn := rt.current
	now := time.Now().UTC()

	rt.seq++
	resp := &domain.Response{
		UserID:         rt.userID,
		ConceptID:      turn.conceptID,
		QuestionID:     &turn.questionID,
		SessionID:      sessionID,
		Mode:           string(turn.mode),
		Format:         turn.format,
		Correct:        false,
		Skipped:        true,
		Aided:          turn.aided,
		SequenceNumber: rt.seq,
	}
	if err := s.responses.Append(ctx, nil, resp); err != nil {
		return nil, err
	}

	state, criteria, _, err := s.applyResponse(ctx, rt, resp, now)
	if err != nil {
		return nil, err
	}

	if err := s.bumpSessionCounters(ctx, sessionID, false); err != nil {
		s.log.Warn("session counter update failed", "session_id", sessionID, "error", err)
	}

	rt.recentActions = appendAction(rt.recentActions, engine.ActionSkip)
	rt.lastConceptID = turn.conceptID
	rt.current = nil

	fb := &Feedback{
		SessionID:       sessionID,
		ConceptID:       turn.conceptID,
		Correct:         false,
		Phase:           state.Phase,
		Streak:          state.ConsecutivePerfect,
		Accuracy:        state.Accuracy(),
		PredictedRecall: criteria.PredictedRecall,
	}
	s.publish(ctx, sessionID, realtime.EventFeedback, fb)
	return fb, nil
}

func (s *sessionService) Hint(ctx context.Context, sessionID uuid.UUID) (*Aid, error) {
	rt, err := s.runtime(sessionID)
	if err != nil {
		return nil, err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.current == nil {
		return nil, fmt.Errorf("%w: no question in flight", pkgerr.ErrInvalidArgument)
	}

	rt.current.aided = true
	rt.recentActions = appendAction(rt.recentActions, engine.ActionHint)

	return &Aid{
		SessionID: sessionID,
		ConceptID: rt.current.conceptID,
		Kind:      "hint",
		Text:      s.hintText(rt, rt.current),
	}, nil
}

func (s *sessionService) Peek(ctx context.Context, sessionID uuid.UUID) (*Aid, error) {
	rt, err := s.runtime(sessionID)
	if err != nil {
		return nil, err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.current == nil {
		return nil, fmt.Errorf("%w: no question in flight", pkgerr.ErrInvalidArgument)
	}

	turn := rt.current
	turn.aided = true
	rt.recentActions = appendAction(rt.recentActions, engine.ActionPeek)

	// A peek is logged but never touches mastery counters.
	rt.seq++
	resp := &domain.Response{
		UserID:         rt.userID,
		ConceptID:      turn.conceptID,
		QuestionID:     &turn.questionID,
		SessionID:      sessionID,
		Mode:           string(turn.mode),
		Format:         turn.format,
		Peeked:         true,
		Aided:          true,
		SequenceNumber: rt.seq,
	}
	if err := s.responses.Append(ctx, nil, resp); err != nil {
		return nil, err
	}

	return &Aid{
		SessionID: sessionID,
		ConceptID: turn.conceptID,
		Kind:      "peek",
		Text:      turn.question.AnswerText,
	}, nil
}

func (s *sessionService) End(ctx context.Context, sessionID uuid.UUID) (*SessionSummary, error) {
	rt, err := s.runtime(sessionID)
	if err != nil {
		return nil, err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.current = nil
	return s.close(ctx, sessionID, rt, domain.SessionStatusCompleted)
}

func (s *sessionService) Abandon(ctx context.Context, sessionID uuid.UUID) error {
	rt, err := s.runtime(sessionID)
	if err != nil {
		return err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	// The in-flight unanswered question leaves no response row.
	rt.current = nil
	_, err = s.close(ctx, sessionID, rt, domain.SessionStatusAbandoned)
	return err
}

func (s *sessionService) Snapshot(ctx context.Context, sessionID uuid.UUID) (*SessionSnapshot, error) {
	session, err := s.sessions.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, pkgerr.ErrNotFound
	}

	concepts, err := s.concepts.ListByMaterialID(ctx, nil, session.MaterialID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(concepts))
	for _, c := range concepts {
		ids = append(ids, c.ID)
	}
	states, err := s.states.ListByUserAndConceptIDs(ctx, nil, session.UserID, ids)
	if err != nil {
		return nil, err
	}
	byConcept := make(map[uuid.UUID]*domain.UserConceptState, len(states))
	for _, st := range states {
		byConcept[st.ConceptID] = st
	}

	snap := &SessionSnapshot{
		SessionID:      session.ID,
		UserID:         session.UserID,
		MaterialID:     session.MaterialID,
		Status:         session.Status,
		StartedAt:      session.StartedAt,
		TotalQuestions: session.TotalQuestions,
		TotalCorrect:   session.TotalCorrect,
	}
	for _, c := range concepts {
		cp := ConceptProgress{ConceptID: c.ID, Name: c.Name, Phase: string(engine.PhaseUntouched)}
		if st := byConcept[c.ID]; st != nil {
			cp.Phase = st.Phase
			cp.Accuracy = st.Accuracy()
			cp.Streak = st.ConsecutivePerfect
			cp.PredictedRecall = st.PredictedRecall
			cp.MasteredAt = st.MasteredAt
		}
		snap.Concepts = append(snap.Concepts, cp)
	}
	return snap, nil
}

// applyResponse folds one graded response into the concept state with a
// versioned write, retried once on a stale read.
func (s *sessionService) applyResponse(ctx context.Context, rt *sessionRuntime, resp *domain.Response, now time.Time) (*domain.UserConceptState, engine.Criteria, bool, error) {
	history, err := s.recallHistory(ctx, rt.userID, resp.ConceptID, resp.ID)
	if err != nil {
		return nil, engine.Criteria{}, false, err
	}

	for attempt := 0; ; attempt++ {
		state, err := s.states.Get(ctx, nil, rt.userID, resp.ConceptID)
		if err != nil {
			return nil, engine.Criteria{}, false, err
		}
		if state == nil {
			state = &domain.UserConceptState{
				UserID:    rt.userID,
				ConceptID: resp.ConceptID,
				Phase:     string(engine.PhaseUntouched),
				Version:   1,
			}
			if err := s.states.Create(ctx, nil, state); err != nil {
				return nil, engine.Criteria{}, false, err
			}
		}

		if state.Phase == string(engine.PhaseMastered) && !resp.Correct {
			// Mastery is terminal. The miss stays in the log but the
			// criteria never move backward.
			s.log.Warn("ignoring backward transition on mastered concept",
				"user_id", rt.userID, "concept_id", resp.ConceptID,
				"error", pkgerr.ErrInvalidTransition)
			crit := engine.EvaluateMastery(stateView(state), s.policy.Mastery)
			return state, crit, false, nil
		}

		criteria, masteredNow := s.foldResponse(state, resp, history, now)

		err = s.states.UpdateVersioned(ctx, nil, state)
		if err == nil {
			if masteredNow {
				if uerr := s.users.IncrementConceptsMastered(ctx, nil, rt.userID, 1); uerr != nil {
					s.log.Warn("mastered counter update failed", "user_id", rt.userID, "error", uerr)
				}
			}
			return state, criteria, masteredNow, nil
		}
		if errors.Is(err, pkgerr.ErrStaleStateWrite) && attempt == 0 {
			s.log.Warn("stale concept state write, retrying",
				"user_id", rt.userID, "concept_id", resp.ConceptID)
			continue
		}
		return nil, engine.Criteria{}, false, err
	}
}

// foldResponse mutates state in place with the counter deltas for one
// response, then re-evaluates criteria and phase.
func (s *sessionService) foldResponse(state *domain.UserConceptState, resp *domain.Response, history []engine.Attempt, now time.Time) (engine.Criteria, bool) {
	perfect := resp.Correct && !resp.Partial

	state.TotalAttempts++
	if resp.Correct {
		state.CorrectAttempts++
		state.ConsecutiveFailures = 0
	} else {
		state.ConsecutiveFailures++
	}
	if perfect {
		state.ConsecutivePerfect++
		if state.ConsecutivePerfect > state.MaxStreak {
			state.MaxStreak = state.ConsecutivePerfect
		}
	} else {
		state.ConsecutivePerfect = 0
	}

	if !resp.Skipped {
		// Baseline comes from the first unaided correct answers only and
		// is never recomputed afterwards.
		if resp.Correct && !resp.Aided && state.BaselineSamples < s.policy.Mastery.BaselineSamples {
			total := state.BaselineResponseMs*state.BaselineSamples + resp.ResponseTimeMs
			state.BaselineSamples++
			state.BaselineResponseMs = total / state.BaselineSamples
		}

		recent := append(state.RecentTimes(), resp.ResponseTimeMs)
		if len(recent) > s.policy.Mastery.SpeedWindow {
			recent = recent[len(recent)-s.policy.Mastery.SpeedWindow:]
		}
		state.SetRecentTimes(recent)

		if resp.HesitationMs > hesitationThresholdMs {
			state.HesitationCount++
		}
	}

	if resp.Format != "" {
		state.SetFormatsAttempted(addString(state.FormatsAttemptedList(), resp.Format))
		if resp.Correct {
			state.SetFormatsPassed(addString(state.FormatsPassedList(), resp.Format))
		}
	}

	history = append(history, engine.Attempt{At: now, Correct: resp.Correct})
	state.PredictedRecall = engine.PredictRecall(history, now, s.policy.Recall)
	state.LastEvaluatedAt = &now

	criteria := engine.EvaluateMastery(stateView(state), s.policy.Mastery)

	phase := engine.NextPhase(engine.Phase(state.Phase), engine.ProgressSnapshot{
		TotalAttempts:        state.TotalAttempts,
		Accuracy:             state.Accuracy(),
		Streak:               state.ConsecutivePerfect,
		ConsecutiveFailures:  state.ConsecutiveFailures,
		CandidateCriteriaMet: criteria.CandidateMet(),
		AllCriteriaMet:       criteria.Mastered,
	})
	state.Phase = string(phase)

	masteredNow := false
	if criteria.Mastered && state.MasteredAt == nil {
		masteredNow = true
		state.MasteredAt = &now
		review := now.Add(time.Duration(s.policy.Recall.HorizonHours * float64(time.Hour)))
		state.NextReviewAt = &review
		state.Phase = string(engine.PhaseMastered)
	}
	return criteria, masteredNow
}

// recallHistory rebuilds the forecaster input from the append-only log,
// excluding the row being applied right now. Peeks are aid events, not
// retrieval attempts.
func (s *sessionService) recallHistory(ctx context.Context, userID, conceptID, excludeID uuid.UUID) ([]engine.Attempt, error) {
	rows, err := s.responses.ListByUserAndConceptID(ctx, nil, userID, conceptID)
	if err != nil {
		return nil, err
	}
	history := make([]engine.Attempt, 0, len(rows)+1)
	for _, r := range rows {
		if r.Peeked || r.ID == excludeID {
			continue
		}
		history = append(history, engine.Attempt{At: r.CreatedAt, Correct: r.Correct})
	}
	return history, nil
}

func (s *sessionService) conceptView(conceptID uuid.UUID, state *domain.UserConceptState) engine.ConceptView {
	if state == nil {
		return engine.ConceptView{ConceptID: conceptID, Phase: engine.PhaseUntouched}
	}
	v := engine.ConceptView{
		ConceptID:     conceptID,
		Phase:         engine.Phase(state.Phase),
		TotalAttempts: state.TotalAttempts,
		Accuracy:      state.Accuracy(),
		Criteria:      engine.EvaluateMastery(stateView(state), s.policy.Mastery),
	}
	if state.LastEvaluatedAt != nil {
		v.LastAttemptAt = *state.LastEvaluatedAt
	}
	return v
}

func (s *sessionService) stateIndex(ctx context.Context, rt *sessionRuntime) (map[uuid.UUID]*domain.UserConceptState, error) {
	states, err := s.states.ListByUserAndConceptIDs(ctx, nil, rt.userID, rt.conceptIDs)
	if err != nil {
		return nil, err
	}
	idx := make(map[uuid.UUID]*domain.UserConceptState, len(states))
	for _, st := range states {
		idx[st.ConceptID] = st
	}
	return idx, nil
}

func (s *sessionService) allMastered(ctx context.Context, rt *sessionRuntime) (bool, error) {
	states, err := s.states.ListByUserAndConceptIDs(ctx, nil, rt.userID, rt.conceptIDs)
	if err != nil {
		return false, err
	}
	if len(states) < len(rt.conceptIDs) {
		return false, nil
	}
	for _, st := range states {
		if st.Phase != string(engine.PhaseMastered) {
			return false, nil
		}
	}
	return true, nil
}

// recordMode stamps the concept state with the mode being served. Best
// effort: a stale write here is harmless and not retried.
func (s *sessionService) recordMode(ctx context.Context, state *domain.UserConceptState, mode engine.Mode) {
	if state == nil || state.CurrentMode == string(mode) {
		return
	}
	now := time.Now().UTC()
	state.CurrentMode = string(mode)
	state.ModeEnteredAt = &now
	if err := s.states.UpdateVersioned(ctx, nil, state); err != nil {
		s.log.Debug("mode stamp skipped", "concept_id", state.ConceptID, "error", err)
	}
}

// close finalizes the session: summary from the response log, lock
// released, runtime torn down.
func (s *sessionService) close(ctx context.Context, sessionID uuid.UUID, rt *sessionRuntime, status string) (*SessionSummary, error) {
	session, err := s.sessions.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, pkgerr.ErrNotFound
	}
	if session.Status != domain.SessionStatusActive {
		return nil, pkgerr.ErrSessionClosed
	}

	log, err := s.responses.ListBySessionID(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	summary := summarize(sessionID, session.StartedAt, now, status, log)

	mastered, err := s.masteredDuring(ctx, rt, session.StartedAt)
	if err != nil {
		return nil, err
	}
	summary.ConceptsMastered = mastered

	session.Status = status
	session.EndedAt = &now
	session.TotalQuestions = summary.TotalQuestions
	session.TotalCorrect = summary.TotalCorrect
	session.ConceptsWorked = summary.ConceptsWorked
	session.ConceptsMastered = summary.ConceptsMastered
	if raw, err := json.Marshal(summary); err == nil {
		session.Summary = datatypes.JSON(raw)
	}
	if err := s.sessions.Update(ctx, nil, session); err != nil {
		return nil, err
	}

	if summary.DurationMinutes > 0 {
		if err := s.users.AddSessionMinutes(ctx, nil, rt.userID, summary.DurationMinutes); err != nil {
			s.log.Warn("session time update failed", "user_id", rt.userID, "error", err)
		}
	}

	if status == domain.SessionStatusCompleted {
		s.publish(ctx, sessionID, realtime.EventSessionComplete, summary)
	}
	s.teardown(ctx, sessionID, rt)

	s.log.Info("session closed",
		"session_id", sessionID, "status", status,
		"questions", summary.TotalQuestions, "mastered", summary.ConceptsMastered)
	return summary, nil
}

func (s *sessionService) masteredDuring(ctx context.Context, rt *sessionRuntime, since time.Time) (int, error) {
	states, err := s.states.ListByUserAndConceptIDs(ctx, nil, rt.userID, rt.conceptIDs)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, st := range states {
		if st.MasteredAt != nil && !st.MasteredAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *sessionService) teardown(ctx context.Context, sessionID uuid.UUID, rt *sessionRuntime) {
	s.mu.Lock()
	delete(s.active, sessionID)
	s.mu.Unlock()
	s.provider.Forget(sessionID)
	if err := s.lock.Release(ctx, rt.userID); err != nil {
		s.log.Warn("lock release failed", "user_id", rt.userID, "error", err)
	}
}

func (s *sessionService) runtime(sessionID uuid.UUID) (*sessionRuntime, error) {
	if sessionID == uuid.Nil {
		return nil, pkgerr.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.active[sessionID]
	if !ok {
		return nil, pkgerr.ErrSessionClosed
	}
	return rt, nil
}

func (s *sessionService) bumpSessionCounters(ctx context.Context, sessionID uuid.UUID, correct bool) error {
	session, err := s.sessions.GetByID(ctx, nil, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return pkgerr.ErrNotFound
	}
	session.TotalQuestions++
	if correct {
		session.TotalCorrect++
	}
	return s.sessions.Update(ctx, nil, session)
}

func (s *sessionService) hintText(rt *sessionRuntime, turn *servedTurn) string {
	if len(turn.question.Payload) > 0 {
		var payload map[string]any
		if err := json.Unmarshal(turn.question.Payload, &payload); err == nil {
			if h, ok := payload["hint"].(string); ok && h != "" {
				return h
			}
		}
	}
	if def := rt.conceptDefs[turn.conceptID]; def != "" {
		return def
	}
	return "Think about " + rt.conceptNames[turn.conceptID] + "."
}

func (s *sessionService) publish(ctx context.Context, sessionID uuid.UUID, event realtime.Event, data any) {
	msg := realtime.Message{
		Channel: realtime.SessionChannel(sessionID.String()),
		Event:   event,
		Data:    data,
	}
	if err := s.bus.Publish(ctx, msg); err != nil {
		s.log.Warn("bus publish failed", "event", event, "error", err)
	}
}

func stateView(state *domain.UserConceptState) engine.StateView {
	return engine.StateView{
		TotalAttempts:      state.TotalAttempts,
		CorrectAttempts:    state.CorrectAttempts,
		ConsecutivePerfect: state.ConsecutivePerfect,
		BaselineResponseMs: state.BaselineResponseMs,
		RecentResponseMs:   state.RecentTimes(),
		FormatsAttempted:   state.FormatsAttemptedList(),
		FormatsPassed:      state.FormatsPassedList(),
		PredictedRecall:    state.PredictedRecall,
	}
}

func addString(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}

func appendAction(actions []engine.Action, a engine.Action) []engine.Action {
	actions = append(actions, a)
	if len(actions) > actionHistoryCap {
		actions = actions[len(actions)-actionHistoryCap:]
	}
	return actions
}
