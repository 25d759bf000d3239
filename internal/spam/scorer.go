package spam

import (
	"fmt"
	"math"
	"strings"

	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/model"
)

// Registry answers whether a phone number is a known spam source. The list
// itself is owned and refreshed outside the pipeline.
type Registry interface {
	IsSpamNumber(number string) bool
}

// StaticRegistry is a Registry backed by a fixed number set, typically
// loaded from configuration
type StaticRegistry struct {
	numbers map[string]struct{}
}

// NewStaticRegistry builds a registry from a list of numbers
func NewStaticRegistry(numbers []string) *StaticRegistry {
	set := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		set[n] = struct{}{}
	}
	return &StaticRegistry{numbers: set}
}

func (r *StaticRegistry) IsSpamNumber(number string) bool {
	_, ok := r.numbers[number]
	return ok
}

// Config carries the scoring weights and keyword tables. The defaults match
// the shipped product behavior; deployments may override them.
type Config struct {
	Threshold         float64  `yaml:"threshold"`
	KnownNumberWeight float64  `yaml:"known_number_weight"`
	KeywordWeight     float64  `yaml:"keyword_weight"`
	RobocallWeight    float64  `yaml:"robocall_weight"`
	UrgencyWeight     float64  `yaml:"urgency_weight"`
	Keywords          []string `yaml:"keywords"`
	UrgencyPhrases    []string `yaml:"urgency_phrases"`
}

// DefaultConfig returns the shipped scoring configuration
func DefaultConfig() Config {
	return Config{
		Threshold:         0.5,
		KnownNumberWeight: 0.8,
		KeywordWeight:     0.15,
		RobocallWeight:    0.3,
		UrgencyWeight:     0.2,
		Keywords: []string{
			"prize", "winner", "lottery", "congratulations",
			"free offer", "free gift", "claim your",
			"car warranty", "extended warranty",
			"credit card debt", "loan approval", "consolidate",
			"irs", "social security", "government benefit",
			"refund owed", "act now",
		},
		UrgencyPhrases: []string{
			"urgent", "expires today", "last chance",
		},
	}
}

// Scorer computes spam verdicts from a caller number and transcript text.
// It is a pure function of its inputs plus static configuration; it never
// performs I/O and never fails.
type Scorer struct {
	registry Registry
	config   Config
}

// NewScorer creates a spam scorer
func NewScorer(registry Registry, config Config) *Scorer {
	return &Scorer{
		registry: registry,
		config:   config,
	}
}

// Score evaluates every signal against the transcript and caller number.
// Each triggered signal adds its weight and a human-readable reason; the
// summed confidence is clamped to [0, 1].
func (s *Scorer) Score(callerNumber, transcript string) model.SpamVerdict {
	var (
		confidence float64
		reasons    []string
	)

	text := strings.ToLower(transcript)

	if s.registry != nil && s.registry.IsSpamNumber(callerNumber) {
		confidence += s.config.KnownNumberWeight
		reasons = append(reasons, "caller number is a known spam source")
	}

	if hits := s.keywordHits(text); hits > 0 {
		confidence += s.config.KeywordWeight * float64(hits)
		reasons = append(reasons, fmt.Sprintf("%d spam keyword hit(s)", hits))
	}

	if isRobocallPhrasing(text) {
		confidence += s.config.RobocallWeight
		reasons = append(reasons, "robocall phrasing detected")
	}

	if s.hasUrgencyTactics(text) {
		confidence += s.config.UrgencyWeight
		reasons = append(reasons, "urgency tactics detected")
	}

	confidence = math.Min(confidence, 1.0)

	return model.SpamVerdict{
		IsSpam:     confidence > s.config.Threshold,
		Confidence: confidence,
		Reasons:    reasons,
	}
}

func (s *Scorer) keywordHits(text string) int {
	hits := 0
	for _, keyword := range s.config.Keywords {
		if strings.Contains(text, keyword) {
			hits++
		}
	}
	return hits
}

func (s *Scorer) hasUrgencyTactics(text string) bool {
	for _, phrase := range s.config.UrgencyPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

func isRobocallPhrasing(text string) bool {
	pressNumber := strings.Contains(text, "press") && strings.Contains(text, "number")
	dialExtension := strings.Contains(text, "dial") && strings.Contains(text, "extension")
	return pressNumber || dialExtension
}
