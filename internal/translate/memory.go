package translate

import (
	"context"
	"time"

	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/cache"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/logger"

	"go.uber.org/zap"
)

// MemoryEntry is one stored translation
type MemoryEntry struct {
	TranslatedText string    `json:"translated_text"`
	SourceLanguage string    `json:"source_language"`
	TargetLanguage string    `json:"target_language"`
	Confidence     float64   `json:"confidence"`
	UsageCount     int64     `json:"usage_count"`
	LastUsedAt     time.Time `json:"last_used_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// Memory is the translation-memory store: previously produced translations
// keyed by language pair and normalized source text, consulted before any
// live provider call.
type Memory struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewMemory creates a translation memory over the given cache
func NewMemory(c cache.Cache, ttl time.Duration) *Memory {
	return &Memory{
		cache: c,
		ttl:   ttl,
	}
}

// Lookup returns the stored translation for the pair and text, if any. A hit
// bumps the entry's usage count and last-used timestamp.
func (m *Memory) Lookup(ctx context.Context, sourceLang, targetLang, text string) (*MemoryEntry, bool) {
	key := cache.TranslationMemoryKey(sourceLang, targetLang, text)

	var entry MemoryEntry
	if err := m.cache.Get(ctx, key, &entry); err != nil {
		return nil, false
	}

	entry.UsageCount++
	entry.LastUsedAt = time.Now()
	if err := m.cache.SetWithTTL(ctx, key, entry, m.ttl); err != nil {
		logger.Warn("Failed to bump translation memory entry", zap.Error(err))
	}

	logger.Debug("Translation memory hit",
		zap.String("source", sourceLang),
		zap.String("target", targetLang),
		zap.Int64("usage_count", entry.UsageCount))

	return &entry, true
}

// Store writes a fresh translation into the memory
func (m *Memory) Store(ctx context.Context, sourceLang, targetLang, text string, result *ProviderResult) error {
	key := cache.TranslationMemoryKey(sourceLang, targetLang, text)

	entry := MemoryEntry{
		TranslatedText: result.TranslatedText,
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
		Confidence:     result.Confidence,
		UsageCount:     1,
		LastUsedAt:     time.Now(),
		CreatedAt:      time.Now(),
	}

	return m.cache.SetWithTTL(ctx, key, entry, m.ttl)
}
