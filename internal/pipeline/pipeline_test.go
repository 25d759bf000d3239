package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/classify"
	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/langid"
	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/spam"
	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/summary"
	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/transcribe"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/logger"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = logger.Init(true)
}

type mockLangID struct {
	mock.Mock
}

func (m *mockLangID) Identify(ctx context.Context, audioURI, hint string) ([]langid.Candidate, error) {
	args := m.Called(ctx, audioURI, hint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]langid.Candidate), args.Error(1)
}

type mockTranscriber struct {
	mock.Mock
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audioRef, language string, alternates []string) (*transcribe.TranscriptResult, error) {
	args := m.Called(ctx, audioRef, language, alternates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transcribe.TranscriptResult), args.Error(1)
}

type mockTranslator struct {
	mock.Mock
}

func (m *mockTranslator) Translate(ctx context.Context, text, sourceLang, targetLang, qualityTier string) (*model.TranslationResult, error) {
	args := m.Called(ctx, text, sourceLang, targetLang, qualityTier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TranslationResult), args.Error(1)
}

type staticResolver struct{}

func (staticResolver) ResolveURI(audioRef string) string {
	return "https://audio.test/" + audioRef
}

func newTestPipeline(langID LanguageIdentifier, transcriber Transcriber, translator Translator) *Pipeline {
	return New(
		staticResolver{},
		langID,
		transcriber,
		spam.NewScorer(spam.NewStaticRegistry([]string{"+15559999"}), spam.DefaultConfig()),
		classify.NewClassifier(classify.DefaultConfig()),
		summary.NewSummarizer(),
		translator,
		DefaultConfig(),
	)
}

func testInput() model.VoicemailInput {
	return model.VoicemailInput{
		AudioRef:          "vm-1.ogg",
		CallerNumber:      "+15550100",
		DurationSeconds:   20,
		PreferredLanguage: "en",
		Tier:              model.TierPremium,
	}
}

func englishDetection() []langid.Candidate {
	return []langid.Candidate{{Language: "en", Confidence: 0.95}}
}

func TestPipeline_CompletedSameLanguage(t *testing.T) {
	langID := new(mockLangID)
	transcriber := new(mockTranscriber)
	translator := new(mockTranslator)

	langID.On("Identify", mock.Anything, "https://audio.test/vm-1.ogg", "en").Return(englishDetection(), nil)
	transcriber.On("Transcribe", mock.Anything, "https://audio.test/vm-1.ogg", "en", mock.Anything).Return(&transcribe.TranscriptResult{
		Text: "Thank you, calling to confirm your appointment",
	}, nil)

	p := newTestPipeline(langID, transcriber, translator)

	rec, err := p.Process(context.Background(), testInput())

	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, rec.Status)
	require.NotNil(t, rec.Transcript)
	assert.Equal(t, "Thank you, calling to confirm your appointment", *rec.Transcript)
	assert.Equal(t, "en", rec.DetectedLanguage)
	assert.Equal(t, model.SentimentPositive, rec.Sentiment)
	assert.Equal(t, model.CategoryAppointment, rec.Category)
	assert.False(t, rec.Spam.IsSpam)
	assert.Nil(t, rec.Summary)
	assert.Nil(t, rec.TranslatedText)

	// Same detected and preferred language: no provider is consulted.
	translator.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_TranscriptionFailureIsFatal(t *testing.T) {
	langID := new(mockLangID)
	transcriber := new(mockTranscriber)
	translator := new(mockTranslator)

	langID.On("Identify", mock.Anything, mock.Anything, "en").Return(englishDetection(), nil)
	transcriber.On("Transcribe", mock.Anything, mock.Anything, "en", mock.Anything).Return(nil, &transcribe.TranscriptionError{
		AudioRef: "vm-1.ogg",
		Reason:   "no segments above confidence 0.70",
	})

	p := newTestPipeline(langID, transcriber, translator)

	rec, err := p.Process(context.Background(), testInput())

	require.Error(t, err)
	assert.Equal(t, model.StatusFailed, rec.Status)
	require.NotNil(t, rec.ErrorText)
	assert.Nil(t, rec.Transcript)
	assert.Nil(t, rec.TranslatedText)
	assert.Nil(t, rec.Summary)
	assert.Empty(t, rec.Spam.Reasons)
	assert.Equal(t, 0.0, rec.Spam.Confidence)

	// Nothing downstream of transcription ever runs.
	translator.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_DetectionFailureFallsBackToPreferred(t *testing.T) {
	langID := new(mockLangID)
	transcriber := new(mockTranscriber)
	translator := new(mockTranslator)

	langID.On("Identify", mock.Anything, mock.Anything, "en").Return(nil, langid.ErrInsufficientInput)
	transcriber.On("Transcribe", mock.Anything, mock.Anything, "en", mock.Anything).Return(&transcribe.TranscriptResult{
		Text: "hello there",
	}, nil)

	p := newTestPipeline(langID, transcriber, translator)

	rec, err := p.Process(context.Background(), testInput())

	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, rec.Status)
	assert.Equal(t, "en", rec.DetectedLanguage)
	assert.Contains(t, rec.Meta, "language_detection_error")
	transcriber.AssertExpectations(t)
}

func TestPipeline_TranslatesWhenLanguagesDiffer(t *testing.T) {
	langID := new(mockLangID)
	transcriber := new(mockTranscriber)
	translator := new(mockTranslator)

	langID.On("Identify", mock.Anything, mock.Anything, "en").Return([]langid.Candidate{
		{Language: "es", Confidence: 0.9},
	}, nil)
	transcriber.On("Transcribe", mock.Anything, mock.Anything, "es", mock.Anything).Return(&transcribe.TranscriptResult{
		Text: "hola, llamo por la entrega",
	}, nil)
	translator.On("Translate", mock.Anything, "hola, llamo por la entrega", "es", "en", "premium").Return(&model.TranslationResult{
		Success:        true,
		TranslatedText: "hi, calling about the delivery",
		Provider:       "primary",
	}, nil)

	p := newTestPipeline(langID, transcriber, translator)

	rec, err := p.Process(context.Background(), testInput())

	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, rec.Status)
	require.NotNil(t, rec.TranslatedText)
	assert.Equal(t, "hi, calling about the delivery", *rec.TranslatedText)
	assert.Equal(t, "primary", rec.Meta["translation_provider"])
	translator.AssertExpectations(t)
}

func TestPipeline_TranslationFailureIsNonFatal(t *testing.T) {
	langID := new(mockLangID)
	transcriber := new(mockTranscriber)
	translator := new(mockTranslator)

	langID.On("Identify", mock.Anything, mock.Anything, "en").Return([]langid.Candidate{
		{Language: "es", Confidence: 0.9},
	}, nil)
	transcriber.On("Transcribe", mock.Anything, mock.Anything, "es", mock.Anything).Return(&transcribe.TranscriptResult{
		Text: "hola",
	}, nil)
	translator.On("Translate", mock.Anything, "hola", "es", "en", "premium").Return(nil, assert.AnError)

	p := newTestPipeline(langID, transcriber, translator)

	rec, err := p.Process(context.Background(), testInput())

	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, rec.Status)
	assert.Nil(t, rec.TranslatedText)
	assert.Contains(t, rec.Meta, "translation_error")
}

func TestPipeline_FreeTierSkipsTranslation(t *testing.T) {
	langID := new(mockLangID)
	transcriber := new(mockTranscriber)
	translator := new(mockTranslator)

	langID.On("Identify", mock.Anything, mock.Anything, "en").Return([]langid.Candidate{
		{Language: "es", Confidence: 0.9},
	}, nil)
	transcriber.On("Transcribe", mock.Anything, mock.Anything, "es", mock.Anything).Return(&transcribe.TranscriptResult{
		Text: "hola",
	}, nil)

	p := newTestPipeline(langID, transcriber, translator)

	input := testInput()
	input.Tier = model.TierFree

	rec, err := p.Process(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, rec.Status)
	assert.Nil(t, rec.TranslatedText)
	translator.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_SummaryForLongTranscripts(t *testing.T) {
	langID := new(mockLangID)
	transcriber := new(mockTranscriber)
	translator := new(mockTranslator)

	longText := strings.TrimSpace(strings.Repeat("This is a long sentence about the package delivery. ", 6))

	langID.On("Identify", mock.Anything, mock.Anything, "en").Return(englishDetection(), nil)
	transcriber.On("Transcribe", mock.Anything, mock.Anything, "en", mock.Anything).Return(&transcribe.TranscriptResult{
		Text: longText,
	}, nil)

	p := newTestPipeline(langID, transcriber, translator)

	rec, err := p.Process(context.Background(), testInput())

	require.NoError(t, err)
	require.NotNil(t, rec.Summary)
	assert.Equal(t, "This is a long sentence about the package delivery. This is a long sentence about the package delivery.", *rec.Summary)
	assert.Equal(t, model.CategoryDelivery, rec.Category)
}

func TestPipeline_SpamForcesLowPriority(t *testing.T) {
	langID := new(mockLangID)
	transcriber := new(mockTranscriber)
	translator := new(mockTranslator)

	langID.On("Identify", mock.Anything, mock.Anything, "en").Return(englishDetection(), nil)
	transcriber.On("Transcribe", mock.Anything, mock.Anything, "en", mock.Anything).Return(&transcribe.TranscriptResult{
		Text: "Urgent! You won the lottery, claim your prize today",
	}, nil)

	p := newTestPipeline(langID, transcriber, translator)

	input := testInput()
	input.CallerNumber = "+15559999" // known spam source

	rec, err := p.Process(context.Background(), input)

	require.NoError(t, err)
	assert.True(t, rec.Spam.IsSpam)
	assert.Equal(t, model.PriorityLow, rec.Priority)
	assert.Equal(t, model.SentimentUrgent, rec.Sentiment)
}

func TestPipeline_Cancellation(t *testing.T) {
	langID := new(mockLangID)
	transcriber := new(mockTranscriber)
	translator := new(mockTranslator)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	langID.On("Identify", mock.Anything, mock.Anything, "en").Return(nil, context.Canceled)

	p := newTestPipeline(langID, transcriber, translator)

	rec, err := p.Process(ctx, testInput())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, model.StatusCancelled, rec.Status)
	transcriber.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
