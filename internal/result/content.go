package result

import (
	"encoding/json"
	"strconv"
)

// DefaultLogistics is shown when the result has no logistics text for
// the selected province.
const DefaultLogistics = "Consulte a la autoridad sanitaria local."

// Content is the displayable body of a result step
type Content struct {
	Medical   string `json:"medical"`
	Logistics string `json:"logistics,omitempty"`
}

type structuredContent struct {
	Medical   string            `json:"medical"`
	Logistics map[string]string `json:"logistics"`
}

// ParseContent reads a result step's content. Structured content is
// {"medical": "...", "logistics": {"<provinceId>": "..."}}; logistics are
// picked for provinceID, or key "1" when no province was selected.
// Anything else is returned as plain medical text.
func ParseContent(raw string, provinceID *int) Content {
	var sc structuredContent
	if err := json.Unmarshal([]byte(raw), &sc); err != nil || sc.Medical == "" || sc.Logistics == nil {
		return Content{Medical: raw}
	}

	key := "1"
	if provinceID != nil {
		key = strconv.Itoa(*provinceID)
	}
	logistics := sc.Logistics[key]
	if logistics == "" {
		logistics = DefaultLogistics
	}
	return Content{Medical: sc.Medical, Logistics: logistics}
}
