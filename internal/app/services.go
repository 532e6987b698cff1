package app

import (
	"gorm.io/gorm"

	redisclient "github.com/yungbote/mastery-engine/internal/clients/redis"
	"github.com/yungbote/mastery-engine/internal/pkg/logger"
	"github.com/yungbote/mastery-engine/internal/realtime/bus"
	"github.com/yungbote/mastery-engine/internal/services"
)

type Services struct {
	Provider services.QuestionProvider
	Session  services.SessionService

	Lock redisclient.SessionLock
	Bus  bus.Bus
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos) (Services, error) {
	log.Info("Wiring services...")

	// Single-node fallbacks when redis is not configured.
	var (
		lock   redisclient.SessionLock
		events bus.Bus
		err    error
	)
	if cfg.RedisAddr != "" {
		lock, err = redisclient.NewSessionLock(log)
		if err != nil {
			return Services{}, err
		}
		events, err = bus.NewRedisBus(log)
		if err != nil {
			return Services{}, err
		}
	} else {
		log.Warn("REDIS_ADDR not set, using in-process session lock and noop bus")
		lock = redisclient.NewLocalLock()
		events = bus.NewNoop()
	}

	provider := services.NewQuestionProvider(log, repos.Question)

	session := services.NewSessionService(log, services.SessionServiceDeps{
		DB:        db,
		Policy:    cfg.Policy,
		Users:     repos.User,
		Materials: repos.Material,
		Concepts:  repos.Concept,
		States:    repos.ConceptState,
		Responses: repos.Response,
		Sessions:  repos.Session,
		Provider:  provider,
		Lock:      lock,
		Bus:       events,
	})

	return Services{
		Provider: provider,
		Session:  session,
		Lock:     lock,
		Bus:      events,
	}, nil
}
