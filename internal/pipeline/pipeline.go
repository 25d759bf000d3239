package pipeline

import (
	"context"
	"time"

	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/langid"
	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/transcribe"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/logger"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LanguageIdentifier guesses the spoken language of the voicemail audio
type LanguageIdentifier interface {
	Identify(ctx context.Context, audioURI, hint string) ([]langid.Candidate, error)
}

// Transcriber converts audio into text
type Transcriber interface {
	Transcribe(ctx context.Context, audioRef, language string, alternates []string) (*transcribe.TranscriptResult, error)
}

// SpamScorer computes a spam verdict from caller number and transcript
type SpamScorer interface {
	Score(callerNumber, transcript string) model.SpamVerdict
}

// Classifier derives sentiment, category and priority from a transcript
type Classifier interface {
	Classify(transcript string, isSpam bool) (model.Sentiment, model.Category, model.Priority)
}

// Summarizer produces a short summary of a long transcript
type Summarizer interface {
	Summarize(transcript string) string
}

// Translator translates a transcript to the user's preferred language
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang, qualityTier string) (*model.TranslationResult, error)
}

// AudioResolver turns an opaque audio reference into the URI speech
// providers can read
type AudioResolver interface {
	ResolveURI(audioRef string) string
}

// Config holds pipeline-level policy knobs
type Config struct {
	// SummaryThreshold is the transcript length in characters above which
	// a summary is generated.
	SummaryThreshold int `yaml:"summary_threshold"`
	// Alternates maps a language to the alternate hints submitted with it
	// during transcription.
	Alternates map[string][]string `yaml:"alternates"`
}

// DefaultConfig returns the shipped pipeline configuration
func DefaultConfig() Config {
	return Config{
		SummaryThreshold: 200,
		Alternates:       langid.DefaultConfig().Alternates,
	}
}

// Pipeline sequences the content-processing stages for one voicemail:
// detect language, transcribe, then spam scoring, classification,
// translation and summarization over the transcript. Each Process call is
// independent; the pipeline holds no per-invocation state.
type Pipeline struct {
	audio       AudioResolver
	langID      LanguageIdentifier
	transcriber Transcriber
	spam        SpamScorer
	classifier  Classifier
	summarizer  Summarizer
	translator  Translator
	config      Config
}

// New creates a voicemail pipeline
func New(
	audio AudioResolver,
	langID LanguageIdentifier,
	transcriber Transcriber,
	spam SpamScorer,
	classifier Classifier,
	summarizer Summarizer,
	translator Translator,
	config Config,
) *Pipeline {
	if config.SummaryThreshold <= 0 {
		config.SummaryThreshold = DefaultConfig().SummaryThreshold
	}
	return &Pipeline{
		audio:       audio,
		langID:      langID,
		transcriber: transcriber,
		spam:        spam,
		classifier:  classifier,
		summarizer:  summarizer,
		translator:  translator,
		config:      config,
	}
}

type translationOutcome struct {
	result *model.TranslationResult
	err    error
}

// Process runs one voicemail through the pipeline and assembles the
// annotated record. Transcription failure is fatal; language detection and
// translation failures degrade gracefully. The returned error is non-nil
// only when the record ends up failed or cancelled.
func (p *Pipeline) Process(ctx context.Context, input model.VoicemailInput) (*model.ProcessedVoicemail, error) {
	now := time.Now()
	rec := &model.ProcessedVoicemail{
		ID:               uuid.New().String(),
		CallerNumber:     input.CallerNumber,
		AudioRef:         input.AudioRef,
		DetectedLanguage: input.PreferredLanguage,
		Sentiment:        model.SentimentNeutral,
		Category:         model.CategoryGeneral,
		Priority:         model.PriorityLow,
		Status:           model.StatusPending,
		Meta:             model.JSONB{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	rec.SetProcessing()

	logger.Info("Processing voicemail",
		zap.String("voicemail_id", rec.ID),
		zap.String("caller", input.CallerNumber),
		zap.Int("duration_s", input.DurationSeconds))

	audioURI := p.audio.ResolveURI(input.AudioRef)

	// Stage 1: language detection. Failure is non-fatal; transcription
	// proceeds with the user's preferred language as a best-effort hint.
	language := input.PreferredLanguage
	candidates, err := p.langID.Identify(ctx, audioURI, input.PreferredLanguage)
	if err != nil {
		if ctx.Err() != nil {
			rec.SetCancelled()
			return rec, ctx.Err()
		}
		logger.Warn("Language detection failed, using preferred language",
			zap.String("voicemail_id", rec.ID),
			zap.Error(err))
		rec.Meta["language_detection_error"] = err.Error()
	} else if len(candidates) > 0 {
		language = candidates[0].Language
	}
	rec.DetectedLanguage = language

	// Stage 2: transcription. Failure here is fatal; nothing downstream
	// can run without a transcript.
	transcript, err := p.transcriber.Transcribe(ctx, audioURI, language, p.config.Alternates[language])
	if err != nil {
		if ctx.Err() != nil {
			rec.SetCancelled()
			return rec, ctx.Err()
		}
		logger.Error("Transcription failed",
			zap.String("voicemail_id", rec.ID),
			zap.Error(err))
		rec.SetFailed(err.Error())
		return rec, err
	}
	rec.SetTranscript(transcript.Text)

	// Stage 4: translation depends only on the transcript and detected
	// language, so it runs concurrently with the pure stages below.
	var translationCh chan translationOutcome
	if input.Tier.AllowsTranslation() && input.PreferredLanguage != "" && language != input.PreferredLanguage {
		translationCh = make(chan translationOutcome, 1)
		go func() {
			result, err := p.translator.Translate(ctx, transcript.Text, language, input.PreferredLanguage, input.Tier.QualityTier())
			translationCh <- translationOutcome{result: result, err: err}
		}()
	}

	// Stage 3: spam scoring. Pure function; cannot fail.
	rec.Spam = p.spam.Score(input.CallerNumber, transcript.Text)

	// Stage 5: classification.
	rec.Sentiment, rec.Category, rec.Priority = p.classifier.Classify(transcript.Text, rec.Spam.IsSpam)

	// Stage 6: summarization, only for long transcripts.
	if len(transcript.Text) > p.config.SummaryThreshold {
		summary := p.summarizer.Summarize(transcript.Text)
		rec.Summary = &summary
	}

	if translationCh != nil {
		select {
		case <-ctx.Done():
			rec.SetCancelled()
			return rec, ctx.Err()
		case outcome := <-translationCh:
			if outcome.err != nil {
				// Translation is a value-add; its failure never
				// fails the voicemail.
				logger.Warn("Translation failed",
					zap.String("voicemail_id", rec.ID),
					zap.Error(outcome.err))
				rec.Meta["translation_error"] = outcome.err.Error()
			} else if outcome.result.Success {
				rec.TranslatedText = &outcome.result.TranslatedText
				rec.Meta["translation_provider"] = outcome.result.Provider
			}
		}
	}

	if ctx.Err() != nil {
		rec.SetCancelled()
		return rec, ctx.Err()
	}

	rec.SetCompleted()

	logger.Info("Voicemail processed",
		zap.String("voicemail_id", rec.ID),
		zap.String("language", rec.DetectedLanguage),
		zap.Bool("is_spam", rec.Spam.IsSpam),
		zap.String("priority", string(rec.Priority)))

	return rec, nil
}
