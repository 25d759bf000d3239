package classify

import (
	"testing"

	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/model"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_UrgencyDominatesPositive(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	sentiment, _, _ := c.Classify("This is urgent but thank you for your help", false)

	assert.Equal(t, model.SentimentUrgent, sentiment)
}

func TestClassifier_Sentiment(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	tests := []struct {
		name       string
		transcript string
		want       model.Sentiment
	}{
		{"urgent", "call me back immediately", model.SentimentUrgent},
		{"negative", "I have a problem with my order", model.SentimentNegative},
		{"positive", "thanks so much for everything", model.SentimentPositive},
		{"neutral", "it's me, call when you can", model.SentimentNeutral},
		{"urgency dominates negative", "urgent problem with the delivery", model.SentimentUrgent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sentiment, _, _ := c.Classify(tt.transcript, false)
			assert.Equal(t, tt.want, sentiment)
		})
	}
}

func TestClassifier_Category(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	tests := []struct {
		name       string
		transcript string
		want       model.Category
	}{
		{"appointment", "calling to reschedule your appointment", model.CategoryAppointment},
		{"delivery", "your package is out for delivery", model.CategoryDelivery},
		{"billing", "your invoice is overdue, please make a payment", model.CategoryBilling},
		{"support", "I need help with a broken device", model.CategorySupport},
		{"personal", "hi honey, it's mom, dinner on sunday?", model.CategoryPersonal},
		{"business", "the contract proposal is ready for review", model.CategoryBusiness},
		{"default", "just wanted to say hi", model.CategoryGeneral},
		{"first bucket wins", "appointment to discuss the invoice", model.CategoryAppointment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, category, _ := c.Classify(tt.transcript, false)
			assert.Equal(t, tt.want, category)
		})
	}
}

func TestClassifier_Priority(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	tests := []struct {
		name       string
		transcript string
		isSpam     bool
		want       model.Priority
	}{
		{"spam is always low", "urgent emergency call immediately", true, model.PriorityLow},
		{"urgent keyword is high", "this is urgent", false, model.PriorityHigh},
		{"meeting keyword is medium", "about tomorrow's meeting", false, model.PriorityMedium},
		{"plain message is low", "just saying hello", false, model.PriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, priority := c.Classify(tt.transcript, tt.isSpam)
			assert.Equal(t, tt.want, priority)
		})
	}
}
