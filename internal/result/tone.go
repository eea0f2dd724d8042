package result

// Tone is the visual severity of a result
type Tone string

const (
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
)

// ToneOf maps a result step variant to its tone
func ToneOf(variant int) Tone {
	switch variant {
	case 2:
		return ToneSuccess
	case 3:
		return ToneWarning
	case 4:
		return ToneDanger
	default:
		return ToneInfo
	}
}

// Icon is the glyph shown next to a result of this tone
func (t Tone) Icon() string {
	switch t {
	case ToneSuccess:
		return "✅"
	case ToneWarning:
		return "⚠️"
	case ToneDanger:
		return "🚨"
	default:
		return "ℹ️"
	}
}
