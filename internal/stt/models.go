package stt

// RecognizeRequest represents a recognition request
type RecognizeRequest struct {
	Config RecognitionConfig `json:"config"`
	Audio  AudioSource       `json:"audio"`
}

// RecognitionConfig holds recognition parameters
type RecognitionConfig struct {
	LanguageCode             string   `json:"languageCode"`
	AlternativeLanguageCodes []string `json:"alternativeLanguageCodes,omitempty"`
	Model                    string   `json:"model,omitempty"`
	MaxAlternatives          int      `json:"maxAlternatives,omitempty"`
	EnableWordConfidence     bool     `json:"enableWordConfidence,omitempty"`
}

// AudioSource specifies the location of the audio
type AudioSource struct {
	URI string `json:"uri"`
}

// Alternative is one recognition hypothesis for a segment
type Alternative struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Segment is one chunk of recognized audio
type Segment struct {
	Alternatives []Alternative `json:"alternatives"`
	LanguageCode string        `json:"languageCode,omitempty"`
	StartTimeMs  int64         `json:"startTimeMs,omitempty"`
	EndTimeMs    int64         `json:"endTimeMs,omitempty"`
}

// Result is a complete recognition response
type Result struct {
	Segments []Segment `json:"results"`
}

// OperationResponse represents a long-running operation envelope
type OperationResponse struct {
	ID       string          `json:"id"`
	Done     bool            `json:"done"`
	Response *Result         `json:"response,omitempty"`
	Error    *OperationError `json:"error,omitempty"`
}

// OperationError represents an error reported by an operation
type OperationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Best returns the highest-confidence alternative of a segment
func (s Segment) Best() (Alternative, bool) {
	if len(s.Alternatives) == 0 {
		return Alternative{}, false
	}
	best := s.Alternatives[0]
	for _, alt := range s.Alternatives[1:] {
		if alt.Confidence > best.Confidence {
			best = alt
		}
	}
	return best, true
}
