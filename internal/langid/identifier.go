package langid

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/stt"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/logger"

	"go.uber.org/zap"
)

// ErrInsufficientInput is returned when there is nothing to identify
var ErrInsufficientInput = errors.New("insufficient input for language identification")

// Candidate is one possible language for an utterance
type Candidate struct {
	Language   string
	Confidence float64
}

// Recognizer is the slice of the speech provider the identifier needs
type Recognizer interface {
	Recognize(ctx context.Context, audioURI, language string, alternates []string) (*stt.Result, error)
}

// Config holds the alternate languages tried alongside each primary hint
type Config struct {
	// Alternates maps a primary language to the alternates submitted with it.
	Alternates map[string][]string
}

// DefaultConfig covers the languages the voicemail product ships with
func DefaultConfig() Config {
	return Config{
		Alternates: map[string][]string{
			"en": {"es", "fr", "de"},
			"es": {"en", "pt", "fr"},
			"fr": {"en", "es", "de"},
			"de": {"en", "fr", "it"},
		},
	}
}

// Identifier guesses the spoken language of an audio sample by running
// recognition with a hint plus configured alternates and ranking the
// provider-reported candidates by confidence.
type Identifier struct {
	recognizer Recognizer
	config     Config
}

// NewIdentifier creates a language identifier
func NewIdentifier(recognizer Recognizer, config Config) *Identifier {
	return &Identifier{
		recognizer: recognizer,
		config:     config,
	}
}

// Identify returns language candidates ordered by descending confidence.
// The hint language is submitted as primary; its configured alternates ride
// along so the provider can report a better match.
func (i *Identifier) Identify(ctx context.Context, audioURI, hint string) ([]Candidate, error) {
	if audioURI == "" {
		return nil, ErrInsufficientInput
	}

	alternates := i.config.Alternates[hint]

	result, err := i.recognizer.Recognize(ctx, audioURI, hint, alternates)
	if err != nil {
		return nil, fmt.Errorf("language identification failed: %w", err)
	}

	// Keep the best confidence seen per language across segments.
	best := make(map[string]float64)
	for _, segment := range result.Segments {
		alt, ok := segment.Best()
		if !ok {
			continue
		}

		language := segment.LanguageCode
		if language == "" {
			language = hint
		}

		if alt.Confidence > best[language] {
			best[language] = alt.Confidence
		}
	}

	if len(best) == 0 {
		return nil, fmt.Errorf("no language candidates for %s", audioURI)
	}

	candidates := make([]Candidate, 0, len(best))
	for language, confidence := range best {
		candidates = append(candidates, Candidate{Language: language, Confidence: confidence})
	}

	sort.Slice(candidates, func(a, b int) bool {
		return candidates[a].Confidence > candidates[b].Confidence
	})

	logger.Debug("Language identified",
		zap.String("audio_uri", audioURI),
		zap.String("top", candidates[0].Language),
		zap.Float64("confidence", candidates[0].Confidence))

	return candidates, nil
}
