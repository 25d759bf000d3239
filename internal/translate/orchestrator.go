package translate

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/cache"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/logger"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/model"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/resilience"

	"go.uber.org/zap"
)

const (
	// MemoryProviderName marks results served from translation memory
	MemoryProviderName = "translation_memory"
	// PassthroughProviderName marks no-op results (empty text, same language)
	PassthroughProviderName = "passthrough"

	// QualityTierPremium gates translation-memory writes: only results
	// produced under the premium tier are considered trustworthy enough
	// to reuse.
	QualityTierPremium = "premium"
)

// Config holds orchestrator-level knobs
type Config struct {
	CallTimeout     time.Duration `yaml:"call_timeout"`
	MaxBatchSize    int           `yaml:"max_batch_size"`
	BreakerFailures uint32        `yaml:"breaker_failures"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}

// DefaultConfig returns the shipped orchestrator configuration
func DefaultConfig() Config {
	return Config{
		CallTimeout:     10 * time.Second,
		MaxBatchSize:    100,
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

type registeredProvider struct {
	config  model.ProviderConfig
	impl    Provider
	limiter *resilience.RateLimiter
	breaker *resilience.CircuitBreaker

	calls      atomic.Int64
	characters atomic.Int64
}

// ProviderStats is a usage snapshot for one provider, exposed for billing
// visibility; nothing is enforced here.
type ProviderStats struct {
	Name          string
	Calls         int64
	Characters    int64
	EstimatedCost float64
}

// Orchestrator translates text through an ordered chain of providers with
// failover, backed by an optional translation memory. Safe for concurrent
// use: provider counters are atomic and the provider list is fixed after
// registration.
type Orchestrator struct {
	mu        sync.RWMutex
	providers []*registeredProvider
	memory    *Memory
	usage     cache.Cache
	config    Config
}

// NewOrchestrator creates a translation orchestrator. memory may be nil to
// disable translation-memory lookups; usage may be nil to skip persisting
// per-provider counters.
func NewOrchestrator(config Config, memory *Memory, usage cache.Cache) *Orchestrator {
	if config.CallTimeout <= 0 {
		config.CallTimeout = DefaultConfig().CallTimeout
	}
	if config.MaxBatchSize <= 0 {
		config.MaxBatchSize = DefaultConfig().MaxBatchSize
	}
	if config.BreakerFailures == 0 {
		config.BreakerFailures = DefaultConfig().BreakerFailures
	}
	if config.BreakerCooldown <= 0 {
		config.BreakerCooldown = DefaultConfig().BreakerCooldown
	}

	return &Orchestrator{
		memory: memory,
		usage:  usage,
		config: config,
	}
}

// Register adds a provider to the failover chain. Providers are tried in
// ascending priority order.
func (o *Orchestrator) Register(config model.ProviderConfig, impl Provider) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.providers = append(o.providers, &registeredProvider{
		config:  config,
		impl:    impl,
		limiter: resilience.NewPerMinute(config.RequestsPerMinute),
		breaker: resilience.NewCircuitBreaker(o.config.BreakerFailures, o.config.BreakerCooldown),
	})

	sort.SliceStable(o.providers, func(a, b int) bool {
		return o.providers[a].config.Priority < o.providers[b].config.Priority
	})
}

// Translate runs one text through the chain. Empty text and same-language
// requests short-circuit without touching any provider.
func (o *Orchestrator) Translate(ctx context.Context, text, sourceLang, targetLang, qualityTier string) (*model.TranslationResult, error) {
	if text == "" || sourceLang == targetLang {
		return &model.TranslationResult{
			Success:        true,
			TranslatedText: text,
			SourceLanguage: sourceLang,
			Confidence:     1.0,
			Provider:       PassthroughProviderName,
			Characters:     len(text),
		}, nil
	}

	if o.memory != nil {
		if entry, ok := o.memory.Lookup(ctx, sourceLang, targetLang, text); ok {
			return &model.TranslationResult{
				Success:        true,
				TranslatedText: entry.TranslatedText,
				SourceLanguage: sourceLang,
				Confidence:     entry.Confidence,
				Provider:       MemoryProviderName,
				Characters:     len(text),
			}, nil
		}
	}

	var failures []ProviderFailure

	o.mu.RLock()
	chain := o.providers
	o.mu.RUnlock()

	for _, p := range chain {
		if !p.config.Enabled || !p.config.Supports(sourceLang, targetLang) {
			continue
		}

		result, err := o.attempt(ctx, p, text, sourceLang, targetLang)
		if err != nil {
			reason := failureReason(err)
			failures = append(failures, ProviderFailure{Provider: p.config.Name, Reason: reason})

			logger.Warn("Translation provider failed",
				zap.String("provider", p.config.Name),
				zap.String("reason", reason))

			if ctx.Err() != nil {
				// The caller is gone; no point trying the rest of
				// the chain.
				break
			}
			continue
		}

		if o.memory != nil && qualityTier == QualityTierPremium {
			if err := o.memory.Store(ctx, sourceLang, targetLang, text, result.raw); err != nil {
				logger.Warn("Failed to store translation memory entry", zap.Error(err))
			}
		}

		return result.translation, nil
	}

	return nil, &ExhaustedError{Failures: failures}
}

// TranslateBatch translates up to MaxBatchSize texts to one target language.
// Oversized batches are rejected outright. The source language is left to
// each provider to detect.
func (o *Orchestrator) TranslateBatch(ctx context.Context, texts []string, targetLang string) ([]model.TranslationResult, error) {
	if len(texts) > o.config.MaxBatchSize {
		return nil, &BatchSizeError{Size: len(texts), Max: o.config.MaxBatchSize}
	}

	results := make([]model.TranslationResult, 0, len(texts))
	for _, text := range texts {
		result, err := o.Translate(ctx, text, "auto", targetLang, "")
		if err != nil {
			results = append(results, model.TranslationResult{
				Success:    false,
				Characters: len(text),
			})
			continue
		}
		results = append(results, *result)
	}

	return results, nil
}

// Stats returns a usage snapshot per registered provider
func (o *Orchestrator) Stats() []ProviderStats {
	o.mu.RLock()
	defer o.mu.RUnlock()

	stats := make([]ProviderStats, 0, len(o.providers))
	for _, p := range o.providers {
		chars := p.characters.Load()
		stats = append(stats, ProviderStats{
			Name:          p.config.Name,
			Calls:         p.calls.Load(),
			Characters:    chars,
			EstimatedCost: float64(chars) * p.config.CostPerCharacter,
		})
	}
	return stats
}

type attemptResult struct {
	translation *model.TranslationResult
	raw         *ProviderResult
}

func (o *Orchestrator) attempt(ctx context.Context, p *registeredProvider, text, sourceLang, targetLang string) (*attemptResult, error) {
	if !p.limiter.Allow() {
		return nil, resilience.ErrRateLimited
	}

	// Attempted calls count toward usage whether or not they succeed.
	p.calls.Add(1)
	p.characters.Add(int64(len(text)))
	o.persistUsage(ctx, p.config.Name)

	callCtx, cancel := context.WithTimeout(ctx, o.config.CallTimeout)
	defer cancel()

	var raw *ProviderResult
	started := time.Now()

	err := p.breaker.Execute(func() error {
		var callErr error
		raw, callErr = p.impl.Translate(callCtx, text, sourceLang, targetLang)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	confidence := raw.Confidence
	if confidence == 0 {
		// Providers that report no confidence are taken at full value.
		confidence = 1.0
	}

	detected := raw.DetectedSource
	if detected == "" {
		detected = sourceLang
	}

	return &attemptResult{
		raw: raw,
		translation: &model.TranslationResult{
			Success:        true,
			TranslatedText: raw.TranslatedText,
			SourceLanguage: detected,
			Confidence:     confidence,
			Provider:       p.config.Name,
			Duration:       time.Since(started),
			Characters:     len(text),
		},
	}, nil
}

func (o *Orchestrator) persistUsage(ctx context.Context, provider string) {
	if o.usage == nil {
		return
	}
	if _, err := o.usage.Increment(ctx, cache.ProviderUsageKey(provider)); err != nil {
		logger.Debug("Failed to persist provider usage", zap.Error(err))
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, resilience.ErrRateLimited):
		return "rate limited"
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit open"
	default:
		return err.Error()
	}
}
