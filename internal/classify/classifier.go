package classify

import (
	"strings"

	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/model"
)

// CategoryBucket ties one category to the keywords that select it
type CategoryBucket struct {
	Category model.Category `yaml:"category"`
	Keywords []string       `yaml:"keywords"`
}

// Config holds the keyword tables driving classification. Buckets are data:
// adding a category or keyword needs no code change.
type Config struct {
	UrgencyKeywords  []string         `yaml:"urgency_keywords"`
	NegativeKeywords []string         `yaml:"negative_keywords"`
	PositiveKeywords []string         `yaml:"positive_keywords"`
	Categories       []CategoryBucket `yaml:"categories"`
	HighPriority     []string         `yaml:"high_priority"`
	MediumPriority   []string         `yaml:"medium_priority"`
}

// DefaultConfig returns the shipped classification tables
func DefaultConfig() Config {
	return Config{
		UrgencyKeywords: []string{
			"urgent", "emergency", "immediately", "asap", "right away", "critical",
		},
		NegativeKeywords: []string{
			"problem", "issue", "complaint", "angry", "disappointed", "cancel", "wrong", "failed",
		},
		PositiveKeywords: []string{
			"thank you", "thanks", "great", "wonderful", "appreciate", "congratulations",
		},
		Categories: []CategoryBucket{
			{Category: model.CategoryAppointment, Keywords: []string{"appointment", "schedule", "reschedule", "meeting", "booking"}},
			{Category: model.CategoryDelivery, Keywords: []string{"delivery", "package", "shipment", "courier", "tracking"}},
			{Category: model.CategoryBilling, Keywords: []string{"invoice", "payment", "bill", "charge", "balance", "account due"}},
			{Category: model.CategorySupport, Keywords: []string{"support", "help", "assistance", "ticket", "broken", "issue with"}},
			{Category: model.CategoryPersonal, Keywords: []string{"mom", "dad", "family", "dinner", "birthday", "love you"}},
			{Category: model.CategoryBusiness, Keywords: []string{"contract", "proposal", "client", "project", "office", "vendor"}},
		},
		HighPriority: []string{
			"urgent", "emergency", "immediately", "critical", "asap",
		},
		MediumPriority: []string{
			"appointment", "meeting", "deadline", "schedule", "due",
		},
	}
}

// Classifier derives sentiment, category and priority from transcript text.
// All matching is case-insensitive substring search, first match wins.
type Classifier struct {
	config Config
}

// NewClassifier creates a content classifier
func NewClassifier(config Config) *Classifier {
	return &Classifier{config: config}
}

// Classify evaluates one transcript. The spam verdict forces priority low
// regardless of content.
func (c *Classifier) Classify(transcript string, isSpam bool) (model.Sentiment, model.Category, model.Priority) {
	text := strings.ToLower(transcript)

	return c.sentiment(text), c.category(text), c.priority(text, isSpam)
}

// sentiment checks buckets in a fixed order: urgency dominates negative,
// negative dominates positive.
func (c *Classifier) sentiment(text string) model.Sentiment {
	switch {
	case containsAny(text, c.config.UrgencyKeywords):
		return model.SentimentUrgent
	case containsAny(text, c.config.NegativeKeywords):
		return model.SentimentNegative
	case containsAny(text, c.config.PositiveKeywords):
		return model.SentimentPositive
	default:
		return model.SentimentNeutral
	}
}

func (c *Classifier) category(text string) model.Category {
	for _, bucket := range c.config.Categories {
		if containsAny(text, bucket.Keywords) {
			return bucket.Category
		}
	}
	return model.CategoryGeneral
}

func (c *Classifier) priority(text string, isSpam bool) model.Priority {
	switch {
	case isSpam:
		return model.PriorityLow
	case containsAny(text, c.config.HighPriority):
		return model.PriorityHigh
	case containsAny(text, c.config.MediumPriority):
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
