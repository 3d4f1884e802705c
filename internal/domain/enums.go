package domain

// DocumentType classifies a study document and selects the extraction prompt.
type DocumentType string

const (
	DocScript   DocumentType = "script"
	DocExercise DocumentType = "exercise"
	DocSolution DocumentType = "solution"
	DocExam     DocumentType = "exam"
)

// ValidDocumentTypes is the canonical set of accepted document type strings.
var ValidDocumentTypes = map[string]bool{
	"script": true, "exercise": true, "solution": true, "exam": true,
}

// AnalysisStatus is the processing state of an analysis record.
type AnalysisStatus string

const (
	StatusMissing AnalysisStatus = "missing"
	StatusQueued  AnalysisStatus = "queued"
	StatusRunning AnalysisStatus = "running"
	StatusDone    AnalysisStatus = "done"
	StatusError   AnalysisStatus = "error"
)

// Terminal reports whether the status can only be left by a content or
// schema-version change.
func (s AnalysisStatus) Terminal() bool {
	return s == StatusDone || s == StatusError
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuestionType is a generation archetype cycled through blueprint slots.
type QuestionType string

const (
	QuestionDefinition  QuestionType = "definition"
	QuestionApply       QuestionType = "apply"
	QuestionCompare     QuestionType = "compare"
	QuestionCalculation QuestionType = "calculation"
	QuestionMCQ         QuestionType = "mcq"
	QuestionTransfer    QuestionType = "transfer"
)

// BlueprintQuestionCycle is the deterministic archetype rotation used when
// filling blueprint slots.
var BlueprintQuestionCycle = []QuestionType{
	QuestionDefinition,
	QuestionApply,
	QuestionCompare,
	QuestionCalculation,
	QuestionMCQ,
	QuestionTransfer,
}

type AnswerMode string

const (
	AnswerFreeText AnswerMode = "free_text"
	AnswerChoice   AnswerMode = "choice"
	AnswerNumeric  AnswerMode = "numeric"
)

// AnswerModeFor maps a question archetype to its expected answer mode.
func AnswerModeFor(q QuestionType) AnswerMode {
	switch q {
	case QuestionMCQ:
		return AnswerChoice
	case QuestionCalculation:
		return AnswerNumeric
	default:
		return AnswerFreeText
	}
}
