package engine

// Mode is a pedagogical question-presentation style.
type Mode string

const (
	// Foundation tier: building understanding.
	ModeWorkedExample Mode = "WORKED_EXAMPLE"
	ModeGuidedSolve   Mode = "GUIDED_SOLVE"
	ModeCollaborative Mode = "COLLABORATIVE"

	// Active recall tier.
	ModeRapidFire  Mode = "RAPID_FIRE"
	ModeFillStory  Mode = "FILL_STORY"
	ModeNumberSwap Mode = "NUMBER_SWAP"

	// Deep understanding tier.
	ModeExplainBack     Mode = "EXPLAIN_BACK"
	ModeReverseEngineer Mode = "REVERSE_ENGINEER"
	ModeSpotError       Mode = "SPOT_ERROR"

	// Mastery tier.
	ModeBuildMap          Mode = "BUILD_MAP"
	ModeMasteryValidation Mode = "MASTERY_VALIDATION"

	// Rescue: very short, high-success-probability items.
	ModeMicroWins Mode = "MICRO_WINS"
)

type ModeCategory string

const (
	CategoryFoundation ModeCategory = "foundation"
	CategoryActive     ModeCategory = "active"
	CategoryDeep       ModeCategory = "deep"
	CategoryMastery    ModeCategory = "mastery"
	CategoryRescue     ModeCategory = "rescue"
)

// Format is the question-type category used for the invariance criterion.
type Format string

const (
	FormatRecall          Format = "recall"
	FormatExplainBack     Format = "explain_back"
	FormatReverse         Format = "reverse"
	FormatErrorSpotting   Format = "error_spotting"
	FormatMapBuilding     Format = "map_building"
	FormatFinalValidation Format = "final_validation"
)

var (
	FoundationModes = []Mode{ModeWorkedExample, ModeGuidedSolve, ModeCollaborative}
	ActiveModes     = []Mode{ModeRapidFire, ModeFillStory, ModeNumberSwap}
	DeepModes       = []Mode{ModeExplainBack, ModeReverseEngineer, ModeSpotError}
)

var modeCategories = map[Mode]ModeCategory{
	ModeWorkedExample:     CategoryFoundation,
	ModeGuidedSolve:       CategoryFoundation,
	ModeCollaborative:     CategoryFoundation,
	ModeRapidFire:         CategoryActive,
	ModeFillStory:         CategoryActive,
	ModeNumberSwap:        CategoryActive,
	ModeExplainBack:       CategoryDeep,
	ModeReverseEngineer:   CategoryDeep,
	ModeSpotError:         CategoryDeep,
	ModeBuildMap:          CategoryMastery,
	ModeMasteryValidation: CategoryMastery,
	ModeMicroWins:         CategoryRescue,
}

var modeFormats = map[Mode]Format{
	ModeWorkedExample:     FormatRecall,
	ModeGuidedSolve:       FormatRecall,
	ModeCollaborative:     FormatExplainBack,
	ModeRapidFire:         FormatRecall,
	ModeFillStory:         FormatRecall,
	ModeNumberSwap:        FormatReverse,
	ModeExplainBack:       FormatExplainBack,
	ModeReverseEngineer:   FormatReverse,
	ModeSpotError:         FormatErrorSpotting,
	ModeBuildMap:          FormatMapBuilding,
	ModeMasteryValidation: FormatFinalValidation,
	ModeMicroWins:         FormatRecall,
}

func (m Mode) Category() ModeCategory {
	if c, ok := modeCategories[m]; ok {
		return c
	}
	return CategoryFoundation
}

// Format returns the invariance format a mode exercises.
func (m Mode) Format() Format {
	if f, ok := modeFormats[m]; ok {
		return f
	}
	return FormatRecall
}

func (m Mode) Valid() bool {
	_, ok := modeCategories[m]
	return ok
}
