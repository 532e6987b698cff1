package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/mastery-engine/internal/data/repos/practice"
	"github.com/yungbote/mastery-engine/internal/pkg/logger"
)

type Repos struct {
	User         practice.UserRepo
	Material     practice.MaterialRepo
	Concept      practice.ConceptRepo
	Question     practice.QuestionRepo
	ConceptState practice.ConceptStateRepo
	Response     practice.ResponseRepo
	Session      practice.SessionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         practice.NewUserRepo(db, log),
		Material:     practice.NewMaterialRepo(db, log),
		Concept:      practice.NewConceptRepo(db, log),
		Question:     practice.NewQuestionRepo(db, log),
		ConceptState: practice.NewConceptStateRepo(db, log),
		Response:     practice.NewResponseRepo(db, log),
		Session:      practice.NewSessionRepo(db, log),
	}
}
