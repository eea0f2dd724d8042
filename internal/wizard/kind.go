package wizard

import (
	"strings"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
)

// Kind is the rendering class of a step
type Kind string

const (
	KindProvince Kind = "province"
	KindCity     Kind = "city"
	KindQuestion Kind = "question"
	KindResult   Kind = "result"
	KindUnknown  Kind = "unknown"
)

// KindOf classifies a step by its code. Terminal steps are results
// whatever their code says.
func KindOf(step *client.Step) Kind {
	switch {
	case step == nil:
		return KindUnknown
	case IsTerminal(step):
		return KindResult
	case step.Code == client.CodeProvince:
		return KindProvince
	case step.Code == client.CodeCity:
		return KindCity
	case strings.HasPrefix(step.Code, client.CodeQuestion):
		return KindQuestion
	default:
		return KindUnknown
	}
}

// IsTerminal reports whether step ends the questionnaire
func IsTerminal(step *client.Step) bool {
	return step != nil && (step.IsEnd || step.Code == client.CodeResult)
}
