package app

import (
	httpH "github.com/yungbote/mastery-engine/internal/http/handlers"
	"github.com/yungbote/mastery-engine/internal/pkg/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Session  *httpH.SessionHandler
	Material *httpH.MaterialHandler
}

func wireHandlers(log *logger.Logger, services Services, repos Repos) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Session:  httpH.NewSessionHandler(log, services.Session),
		Material: httpH.NewMaterialHandler(log, repos.Material, repos.Concept),
	}
}
