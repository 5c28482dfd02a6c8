package models

// EmotionScore is a single (label, score) pair produced by the classifier.
// Score lies in [0,1].
type EmotionScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// EmotionPrediction is the wire form of an EmotionScore
type EmotionPrediction struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
}

// AnalysisResult is the complete audio analysis returned to the caller.
// DetectedEmotion and Confidence always mirror TopPredictions[0].
type AnalysisResult struct {
	AudioID         string              `json:"audio_id"`
	DetectedEmotion string              `json:"detected_emotion"`
	Confidence      float64             `json:"confidence"`
	TopPredictions  []EmotionPrediction `json:"top_predictions"`
	ProcessingTime  float64             `json:"processing_time"`
	Timestamp       string              `json:"timestamp"`
	Insights        string              `json:"insights,omitempty"`
}

// ClinicalAssessment holds the five fields extracted from a structured
// narrative
type ClinicalAssessment struct {
	PrimaryEmotion          string `xml:"primary_emotion"`
	EmotionalProfile        string `xml:"emotional_profile"`
	BehavioralIndicators    string `xml:"behavioral_indicators"`
	PsychologicalContext    string `xml:"psychological_context"`
	ClinicalRecommendations string `xml:"clinical_recommendations"`
}
