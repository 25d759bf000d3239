package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/pipeline"
	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/queue"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/cache"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/logger"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/model"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/resilience"

	"go.uber.org/zap"
)

// VoicemailStore is the persistence surface the worker needs
type VoicemailStore interface {
	CreateVoicemail(ctx context.Context, v *model.ProcessedVoicemail) error
}

// Pipeline runs one voicemail through content processing
type Pipeline interface {
	Process(ctx context.Context, input model.VoicemailInput) (*model.ProcessedVoicemail, error)
}

// Processor consumes voicemail tasks from the queue, runs the pipeline and
// persists the annotated records
type Processor struct {
	db             VoicemailStore
	pipeline       Pipeline
	cache          cache.Cache
	processTimeout time.Duration
}

// NewProcessor creates a worker processor
func NewProcessor(db VoicemailStore, p Pipeline, c cache.Cache, processTimeout time.Duration) *Processor {
	if processTimeout <= 0 {
		processTimeout = 10 * time.Minute
	}
	return &Processor{
		db:             db,
		pipeline:       p,
		cache:          c,
		processTimeout: processTimeout,
	}
}

// ProcessTask handles one queued voicemail. A pipeline failure is recorded
// and acked; only infrastructure errors (persistence) bubble up so the
// message is requeued.
func (p *Processor) ProcessTask(taskData []byte) error {
	var task queue.VoicemailTask
	if err := json.Unmarshal(taskData, &task); err != nil {
		return fmt.Errorf("failed to unmarshal task: %w", err)
	}

	logger.Info("Processing voicemail task",
		zap.String("voicemail_id", task.VoicemailID),
		zap.String("caller", task.CallerNumber))

	ctx, cancel := context.WithTimeout(context.Background(), p.processTimeout)
	defer cancel()

	rec, err := p.pipeline.Process(ctx, task.Input())
	if err != nil {
		// The record carries the failed/cancelled status; it still gets
		// persisted below so the outcome is visible to readers.
		logger.Error("Pipeline did not complete",
			zap.String("voicemail_id", task.VoicemailID),
			zap.String("status", string(rec.Status)),
			zap.Error(err))
	}

	// Ingestion may have assigned the record ID up front.
	if task.VoicemailID != "" {
		rec.ID = task.VoicemailID
	}

	if err := p.persist(ctx, rec); err != nil {
		logger.Error("Failed to persist voicemail",
			zap.String("voicemail_id", rec.ID),
			zap.Error(err))
		return err
	}

	p.cacheTranscript(ctx, rec)

	logger.Info("Voicemail task completed",
		zap.String("voicemail_id", rec.ID),
		zap.String("status", string(rec.Status)))

	return nil
}

// persist saves the record, retrying transient database errors
func (p *Processor) persist(ctx context.Context, rec *model.ProcessedVoicemail) error {
	retry := resilience.DefaultRetryConfig()
	retry.InitialInterval = 500 * time.Millisecond

	return resilience.RetryWithExponentialBackoff(ctx, retry, func() error {
		return p.db.CreateVoicemail(ctx, rec)
	})
}

// cacheTranscript keeps the transcript hot for list/detail reads. Best
// effort only.
func (p *Processor) cacheTranscript(ctx context.Context, rec *model.ProcessedVoicemail) {
	if p.cache == nil || rec.Transcript == nil {
		return
	}

	key := cache.TranscriptCacheKey(rec.ID)
	if err := p.cache.Set(ctx, key, *rec.Transcript); err != nil {
		logger.Warn("Failed to cache transcript",
			zap.String("voicemail_id", rec.ID),
			zap.Error(err))
	}
}

var _ Pipeline = (*pipeline.Pipeline)(nil)
