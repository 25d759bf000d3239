package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// ProcessingStatus represents the lifecycle state of a voicemail record
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
	StatusCancelled  ProcessingStatus = "cancelled"
)

// Sentiment of a transcript
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentUrgent   Sentiment = "urgent"
)

// Category of a voicemail
type Category string

const (
	CategoryAppointment Category = "appointment"
	CategoryDelivery    Category = "delivery"
	CategoryBilling     Category = "billing"
	CategorySupport     Category = "support"
	CategoryPersonal    Category = "personal"
	CategoryBusiness    Category = "business"
	CategoryGeneral     Category = "general"
)

// Priority of a voicemail
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// SubscriptionTier controls which provider tiers a user may exercise
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierBasic   SubscriptionTier = "basic"
	TierPremium SubscriptionTier = "premium"
)

// AllowsTranslation reports whether the tier includes translation
func (t SubscriptionTier) AllowsTranslation() bool {
	return t == TierBasic || t == TierPremium
}

// QualityTier maps the subscription to a provider quality tier
func (t SubscriptionTier) QualityTier() string {
	if t == TierPremium {
		return "premium"
	}
	return "standard"
}

// JSONB represents a JSONB field for PostgreSQL
type JSONB map[string]interface{}

// Value implements the driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// VoicemailInput is the immutable request handed to the pipeline
type VoicemailInput struct {
	AudioRef          string           `json:"audio_ref"`
	CallerNumber      string           `json:"caller_number"`
	CallerName        string           `json:"caller_name,omitempty"`
	DurationSeconds   int              `json:"duration_seconds"`
	PreferredLanguage string           `json:"preferred_language"`
	Tier              SubscriptionTier `json:"tier"`
}

// SpamVerdict is the outcome of spam scoring
type SpamVerdict struct {
	IsSpam     bool     `json:"is_spam"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
}

// ProcessedVoicemail is the pipeline's output record. Later stages only
// append to it; earlier fields are never rewritten.
type ProcessedVoicemail struct {
	ID               string           `json:"id" db:"id"`
	CallerNumber     string           `json:"caller_number" db:"caller_number"`
	AudioRef         string           `json:"audio_ref" db:"audio_ref"`
	Transcript       *string          `json:"transcript,omitempty" db:"transcript"`
	DetectedLanguage string           `json:"detected_language" db:"detected_language"`
	TranslatedText   *string          `json:"translated_text,omitempty" db:"translated_text"`
	Spam             SpamVerdict      `json:"spam" db:"spam"`
	Sentiment        Sentiment        `json:"sentiment" db:"sentiment"`
	Category         Category         `json:"category" db:"category"`
	Priority         Priority         `json:"priority" db:"priority"`
	Summary          *string          `json:"summary,omitempty" db:"summary"`
	Status           ProcessingStatus `json:"status" db:"status"`
	ErrorText        *string          `json:"error_text,omitempty" db:"error_text"`
	Meta             JSONB            `json:"meta" db:"meta"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// TranslationResult is what the translation orchestrator returns
type TranslationResult struct {
	Success        bool          `json:"success"`
	TranslatedText string        `json:"translated_text"`
	SourceLanguage string        `json:"source_language"`
	Confidence     float64       `json:"confidence"`
	Provider       string        `json:"provider"`
	Duration       time.Duration `json:"duration"`
	Characters     int           `json:"characters"`
}

// ProviderConfig describes one translation backend
type ProviderConfig struct {
	Name              string   `yaml:"name" json:"name"`
	Enabled           bool     `yaml:"enabled" json:"enabled"`
	Priority          int      `yaml:"priority" json:"priority"`
	Languages         []string `yaml:"languages" json:"languages"`
	RequestsPerMinute int      `yaml:"requests_per_minute" json:"requests_per_minute"`
	CostPerCharacter  float64  `yaml:"cost_per_character" json:"cost_per_character"`
	QualityTier       string   `yaml:"quality_tier" json:"quality_tier"`
}

// Supports reports whether the provider covers both languages of a pair.
// An empty language list means the provider accepts any pair; an empty or
// "auto" source only constrains the target.
func (p ProviderConfig) Supports(source, target string) bool {
	if len(p.Languages) == 0 {
		return true
	}
	if !p.hasLanguage(target) {
		return false
	}
	if source == "" || source == "auto" {
		return true
	}
	return p.hasLanguage(source)
}

func (p ProviderConfig) hasLanguage(code string) bool {
	for _, l := range p.Languages {
		if l == code {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the record is in a final state
func (v *ProcessedVoicemail) IsTerminal() bool {
	return v.Status == StatusCompleted || v.Status == StatusFailed || v.Status == StatusCancelled
}

// SetProcessing marks the record as in flight
func (v *ProcessedVoicemail) SetProcessing() {
	v.Status = StatusProcessing
	v.UpdatedAt = time.Now()
}

// SetCompleted marks the record as done
func (v *ProcessedVoicemail) SetCompleted() {
	v.Status = StatusCompleted
	v.UpdatedAt = time.Now()
}

// SetFailed marks the record as failed with an error message
func (v *ProcessedVoicemail) SetFailed(errorText string) {
	v.Status = StatusFailed
	v.ErrorText = &errorText
	v.UpdatedAt = time.Now()
}

// SetCancelled marks the record as cancelled by the caller
func (v *ProcessedVoicemail) SetCancelled() {
	v.Status = StatusCancelled
	v.UpdatedAt = time.Now()
}

// SetTranscript attaches the transcript text
func (v *ProcessedVoicemail) SetTranscript(text string) {
	v.Transcript = &text
	v.UpdatedAt = time.Now()
}

// TranscriptLen returns the transcript length in characters, 0 when absent
func (v *ProcessedVoicemail) TranscriptLen() int {
	if v.Transcript == nil {
		return 0
	}
	return len(*v.Transcript)
}
