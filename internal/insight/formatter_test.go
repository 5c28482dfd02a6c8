package insight

import (
	"errors"
	"strings"
	"testing"
)

const fullAssessment = `Here you go:
<xml>
<clinical_assessment>
<primary_emotion> Happiness (90%) </primary_emotion>
<emotional_profile>High valence positive affect</emotional_profile>
<behavioral_indicators>Elevated tone</behavioral_indicators>
<psychological_context>Social engagement</psychological_context>
<clinical_recommendations>Positive reinforcement</clinical_recommendations>
</clinical_assessment>
</xml>
Thanks.`

func TestParseAssessment(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantErr error
	}{
		{"full", fullAssessment, nil},
		{"no span", "The speaker sounds happy.", ErrNoAssessmentSpan},
		{"unterminated span", "<xml><clinical_assessment>", ErrNoAssessmentSpan},
		{"malformed", "<xml><clinical_assessment><primary_emotion>Joy & calm</primary_emotion></clinical_assessment></xml>", ErrMalformedAssessment},
		{"empty fields", "<xml><clinical_assessment><primary_emotion> </primary_emotion></clinical_assessment></xml>", ErrEmptyAssessment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseAssessment(tt.reply)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if a.PrimaryEmotion != "Happiness (90%)" {
				t.Errorf("Expected trimmed primary emotion, got %q", a.PrimaryEmotion)
			}
			if a.ClinicalRecommendations != "Positive reinforcement" {
				t.Errorf("Unexpected recommendations %q", a.ClinicalRecommendations)
			}
		})
	}
}

func TestStructuredFormatter_Format(t *testing.T) {
	f := NewStructuredFormatter()
	got := f.Format(fullAssessment)

	want := AssessmentBanner +
		"Primary Emotion: Happiness (90%)\n" +
		"Emotional Profile: High valence positive affect\n" +
		"Behavioral Indicators: Elevated tone\n" +
		"Psychological Context: Social engagement\n" +
		"Clinical Recommendations: Positive reinforcement"
	if got != want {
		t.Errorf("Unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestStructuredFormatter_SkipsEmptyFields(t *testing.T) {
	reply := "<xml><clinical_assessment><primary_emotion>Sadness</primary_emotion><clinical_recommendations>Follow up</clinical_recommendations></clinical_assessment></xml>"
	got := NewStructuredFormatter().Format(reply)
	want := AssessmentBanner + "Primary Emotion: Sadness\nClinical Recommendations: Follow up"
	if got != want {
		t.Errorf("Got %q, want %q", got, want)
	}
}

func TestStructuredFormatter_MultilineFieldStaysOnOneLine(t *testing.T) {
	reply := "<xml><clinical_assessment>" +
		"<primary_emotion>Calm</primary_emotion>" +
		"<emotional_profile>High valence.\n  Moderate arousal.\n\n\tLow tension.</emotional_profile>" +
		"</clinical_assessment></xml>"

	got := NewStructuredFormatter().Format(reply)
	want := AssessmentBanner +
		"Primary Emotion: Calm\n" +
		"Emotional Profile: High valence. Moderate arousal. Low tension."
	if got != want {
		t.Errorf("Got %q, want %q", got, want)
	}

	for _, line := range strings.Split(strings.TrimPrefix(got, AssessmentBanner), "\n") {
		if !strings.Contains(line, ": ") {
			t.Errorf("Unlabeled line %q", line)
		}
	}
}

func TestStructuredFormatter_Fallback(t *testing.T) {
	replies := []string{
		"  plain prose reply  ",
		"<xml><clinical_assessment><primary_emotion>a & b</primary_emotion></clinical_assessment></xml>",
		"<xml><clinical_assessment></clinical_assessment></xml>",
	}
	for _, reply := range replies {
		got := NewStructuredFormatter().Format(reply)
		if got != NotesBanner+reply {
			t.Errorf("Expected verbatim notes fallback, got %q", got)
		}
	}
}

func TestRawFormatter_Format(t *testing.T) {
	got := NewRawFormatter().Format("\n  The audio conveys joy.  \n")
	if got != "🏥 Clinical Assessment:\nThe audio conveys joy." {
		t.Errorf("Unexpected output %q", got)
	}
}

func TestNewFormatter(t *testing.T) {
	for _, mode := range []string{ModeRaw, ModeStructured} {
		f, err := NewFormatter(mode)
		if err != nil {
			t.Fatalf("Unexpected error for %s: %v", mode, err)
		}
		if f.Mode() != mode {
			t.Errorf("Expected mode %s, got %s", mode, f.Mode())
		}
	}
	if _, err := NewFormatter("fancy"); err == nil {
		t.Error("Expected error for unknown mode")
	}
	if !strings.Contains(StructuredSystemPrompt, "Respond ONLY") {
		t.Error("Structured prompt must request XML only")
	}
	if !strings.Contains(RawSystemPrompt, "Do NOT output XML") {
		t.Error("Raw prompt must request prose")
	}
}
