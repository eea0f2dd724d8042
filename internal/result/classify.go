package result

import (
	"regexp"
	"slices"
	"strings"

	"github.com/pesio-ai/be-tbc-triage/internal/wizard"
)

const (
	DiagnosisPulmonar      = "Pulmonar"
	DiagnosisExtrapulmonar = "Extrapulmonar"
	DiagnosisUnknown       = "Indeterminado"

	WeightUnspecified = "No especificado"

	CategoryPulmonar      = "pulmonar"
	CategoryExtrapulmonar = "extrapulmonar"
)

const riskMarker = "grupo de riesgo"

var digits = regexp.MustCompile(`\d+`)

// Classification is what a finished session is reduced to for statistics
type Classification struct {
	IsRiskGroup   bool   `json:"isRiskGroup"`
	DiagnosisType string `json:"diagnosisType"`
	WeightRange   string `json:"patientWeightRange"`
}

// Derive classifies a session from its answers and the title of the
// result step it reached. Structured option metadata wins over the
// answer text; the text is only read when no answer carries metadata
// for that field.
func Derive(answers []wizard.Answer, resultTitle string) Classification {
	labels := make([]string, 0, len(answers))
	for _, a := range answers {
		labels = append(labels, Normalize(a.Label))
	}

	return Classification{
		IsRiskGroup:   riskGroup(answers, labels),
		DiagnosisType: diagnosis(answers, labels, resultTitle),
		WeightRange:   weight(answers),
	}
}

// riskGroup reports whether the patient belongs to a risk group. An
// answer's RiskFlag decides when any answer carries one. Otherwise an
// answer label must contain "grupo de riesgo" and the standalone word
// "si": "si" inside another word, as in "así" or "sin", does not count.
func riskGroup(answers []wizard.Answer, labels []string) bool {
	flagged := false
	for _, a := range answers {
		if a.RiskFlag != nil {
			flagged = true
			if *a.RiskFlag {
				return true
			}
		}
	}
	if flagged {
		return false
	}
	return slices.ContainsFunc(labels, func(l string) bool {
		return strings.Contains(l, riskMarker) && slices.Contains(words(l), "si")
	})
}

func diagnosis(answers []wizard.Answer, labels []string, title string) string {
	var categories []string
	for _, a := range answers {
		if a.Category != "" {
			categories = append(categories, Normalize(a.Category))
		}
	}
	if len(categories) > 0 {
		if d := diagnosisFrom(categories); d != "" {
			return d
		}
	}

	if d := diagnosisFrom(labels); d != "" {
		return d
	}

	t := Normalize(title)
	switch {
	case strings.Contains(t, CategoryExtrapulmonar):
		return DiagnosisExtrapulmonar
	case strings.Contains(t, "priorizado"), strings.Contains(t, "estandar"):
		return DiagnosisPulmonar
	}
	return DiagnosisUnknown
}

// diagnosisFrom matches extrapulmonar first since it contains pulmonar
func diagnosisFrom(texts []string) string {
	has := func(kw string) bool {
		return slices.ContainsFunc(texts, func(s string) bool { return strings.Contains(s, kw) })
	}
	switch {
	case has(CategoryExtrapulmonar):
		return DiagnosisExtrapulmonar
	case has(CategoryPulmonar):
		return DiagnosisPulmonar
	}
	return ""
}

func weight(answers []wizard.Answer) string {
	for _, a := range answers {
		if a.WeightRange != "" {
			return a.WeightRange
		}
	}
	for _, a := range answers {
		if strings.Contains(strings.ToLower(a.Label), "kg") {
			return FormatWeight(a.Label)
		}
	}
	return WeightUnspecified
}

// FormatWeight turns a weight answer into a range label:
// "30 a 34 kg" is "30-34 kg", "55 kg o más" is "> 55 kg".
func FormatWeight(label string) string {
	n := Normalize(label)
	numbers := digits.FindAllString(n, -1)
	if len(numbers) == 0 {
		return WeightUnspecified
	}
	if strings.Contains(n, "o mas") || strings.Contains(n, ">") {
		return "> " + numbers[0] + " kg"
	}
	if len(numbers) >= 2 {
		return numbers[0] + "-" + numbers[1] + " kg"
	}
	return numbers[0] + " kg"
}
