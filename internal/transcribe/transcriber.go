package transcribe

import (
	"context"
	"fmt"
	"strings"

	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/stt"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/logger"

	"go.uber.org/zap"
)

// DefaultMinConfidence is the segment confidence below which recognition
// output is discarded
const DefaultMinConfidence = 0.7

// TranscriptionError means no usable transcript came back after every
// fallback path was tried
type TranscriptionError struct {
	AudioRef string
	Reason   string
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed for %s: %s", e.AudioRef, e.Reason)
}

// SegmentText is one surviving transcript segment with its confidence
type SegmentText struct {
	Text       string
	Confidence float64
}

// TranscriptResult is the outcome of transcribing one voicemail
type TranscriptResult struct {
	Text     string
	Segments []SegmentText
}

// Recognizer is the slice of the speech provider the transcriber needs
type Recognizer interface {
	Recognize(ctx context.Context, audioURI, language string, alternates []string) (*stt.Result, error)
	RecognizeLongRunning(ctx context.Context, audioURI, language string, alternates []string) (*stt.Result, error)
}

// Transcriber converts an audio reference into text. Short-form recognition
// is tried first; audio past the short-form limit comes back with zero
// results and falls through to the long-running path. Segments below the
// confidence floor are dropped rather than kept.
type Transcriber struct {
	recognizer    Recognizer
	minConfidence float64
}

// NewTranscriber creates a transcriber. A non-positive minConfidence falls
// back to DefaultMinConfidence.
func NewTranscriber(recognizer Recognizer, minConfidence float64) *Transcriber {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &Transcriber{
		recognizer:    recognizer,
		minConfidence: minConfidence,
	}
}

// Transcribe produces a transcript for the given audio reference
func (t *Transcriber) Transcribe(ctx context.Context, audioRef, language string, alternates []string) (*TranscriptResult, error) {
	result, err := t.recognizer.Recognize(ctx, audioRef, language, alternates)
	if err != nil {
		return nil, fmt.Errorf("short-form recognition: %w", err)
	}

	if len(result.Segments) == 0 {
		// Audio exceeded the short-form limits; hand it to the
		// long-running path.
		logger.Info("Short-form recognition returned no results, falling back to long-running",
			zap.String("audio_ref", audioRef))

		result, err = t.recognizer.RecognizeLongRunning(ctx, audioRef, language, alternates)
		if err != nil {
			return nil, fmt.Errorf("long-running recognition: %w", err)
		}
	}

	transcript := t.filter(result)
	if transcript.Text == "" {
		return nil, &TranscriptionError{
			AudioRef: audioRef,
			Reason:   fmt.Sprintf("no segments above confidence %.2f", t.minConfidence),
		}
	}

	logger.Info("Transcription completed",
		zap.String("audio_ref", audioRef),
		zap.Int("segments", len(transcript.Segments)),
		zap.Int("text_length", len(transcript.Text)))

	return transcript, nil
}

// filter drops low-confidence segments and joins the survivors with spaces
func (t *Transcriber) filter(result *stt.Result) *TranscriptResult {
	var (
		parts    []string
		segments []SegmentText
	)

	for _, segment := range result.Segments {
		alt, ok := segment.Best()
		if !ok || alt.Text == "" {
			continue
		}
		if alt.Confidence <= t.minConfidence {
			logger.Debug("Dropping low-confidence segment",
				zap.Float64("confidence", alt.Confidence))
			continue
		}

		parts = append(parts, alt.Text)
		segments = append(segments, SegmentText{Text: alt.Text, Confidence: alt.Confidence})
	}

	return &TranscriptResult{
		Text:     strings.Join(parts, " "),
		Segments: segments,
	}
}
