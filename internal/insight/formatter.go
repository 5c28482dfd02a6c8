package insight

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"go-audio-emotion/internal/logger"
	"go-audio-emotion/pkg/models"
)

const (
	ModeRaw        = "raw"
	ModeStructured = "structured"

	AssessmentBanner = "🏥 Clinical Assessment:\n"
	NotesBanner      = "📝 Clinical Notes:\n"
)

var (
	// ErrNoAssessmentSpan means the reply had no <xml>...</xml> span
	ErrNoAssessmentSpan = errors.New("no <xml> assessment span in reply")
	// ErrMalformedAssessment means the span was present but did not parse
	ErrMalformedAssessment = errors.New("malformed assessment XML")
	// ErrEmptyAssessment means the span parsed but every field was blank
	ErrEmptyAssessment = errors.New("assessment has no populated fields")
)

// Formatter turns a raw chat reply into the insights text. Each mode pairs
// a system prompt with the matching formatter.
type Formatter interface {
	Mode() string
	SystemPrompt() string
	Format(reply string) string
}

// RawFormatter passes the reply through under the assessment banner
type RawFormatter struct{}

func NewRawFormatter() Formatter {
	return &RawFormatter{}
}

func (f *RawFormatter) Mode() string { return ModeRaw }

func (f *RawFormatter) SystemPrompt() string { return RawSystemPrompt }

func (f *RawFormatter) Format(reply string) string {
	return AssessmentBanner + strings.TrimSpace(reply)
}

// StructuredFormatter extracts the five assessment fields and renders one
// "Label: value" line per populated field. Anything it cannot parse is
// returned verbatim under the notes banner.
type StructuredFormatter struct{}

func NewStructuredFormatter() Formatter {
	return &StructuredFormatter{}
}

func (f *StructuredFormatter) Mode() string { return ModeStructured }

func (f *StructuredFormatter) SystemPrompt() string { return StructuredSystemPrompt }

func (f *StructuredFormatter) Format(reply string) string {
	assessment, err := ParseAssessment(reply)
	if err != nil {
		logger.WithError(err).Warn("Falling back to clinical notes")
		return NotesBanner + reply
	}

	lines := make([]string, 0, 5)
	for _, field := range assessmentFields(assessment) {
		// one labeled line per field
		if v := strings.Join(strings.Fields(field.value), " "); v != "" {
			lines = append(lines, field.label+": "+v)
		}
	}
	return AssessmentBanner + strings.Join(lines, "\n")
}

type assessmentEnvelope struct {
	XMLName    xml.Name                  `xml:"xml"`
	Assessment models.ClinicalAssessment `xml:"clinical_assessment"`
}

// ParseAssessment locates the first <xml>...</xml> span in reply and
// decodes it. Field values are trimmed.
func ParseAssessment(reply string) (*models.ClinicalAssessment, error) {
	start := strings.Index(reply, "<xml>")
	if start < 0 {
		return nil, ErrNoAssessmentSpan
	}
	end := strings.Index(reply[start:], "</xml>")
	if end < 0 {
		return nil, ErrNoAssessmentSpan
	}
	span := reply[start : start+end+len("</xml>")]

	var env assessmentEnvelope
	if err := xml.Unmarshal([]byte(span), &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAssessment, err)
	}

	a := env.Assessment
	a.PrimaryEmotion = strings.TrimSpace(a.PrimaryEmotion)
	a.EmotionalProfile = strings.TrimSpace(a.EmotionalProfile)
	a.BehavioralIndicators = strings.TrimSpace(a.BehavioralIndicators)
	a.PsychologicalContext = strings.TrimSpace(a.PsychologicalContext)
	a.ClinicalRecommendations = strings.TrimSpace(a.ClinicalRecommendations)

	populated := false
	for _, field := range assessmentFields(&a) {
		if field.value != "" {
			populated = true
			break
		}
	}
	if !populated {
		return nil, ErrEmptyAssessment
	}
	return &a, nil
}

type labeledField struct {
	label string
	value string
}

// assessmentFields lists the fields in display order
func assessmentFields(a *models.ClinicalAssessment) []labeledField {
	return []labeledField{
		{"Primary Emotion", a.PrimaryEmotion},
		{"Emotional Profile", a.EmotionalProfile},
		{"Behavioral Indicators", a.BehavioralIndicators},
		{"Psychological Context", a.PsychologicalContext},
		{"Clinical Recommendations", a.ClinicalRecommendations},
	}
}

// NewFormatter returns the formatter for mode
func NewFormatter(mode string) (Formatter, error) {
	switch mode {
	case ModeRaw:
		return NewRawFormatter(), nil
	case ModeStructured:
		return NewStructuredFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported insight mode: %s", mode)
	}
}
