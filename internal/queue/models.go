package queue

import (
	"time"

	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/model"
)

// VoicemailTask is the message placed on the queue when a new voicemail
// arrives and needs content processing
type VoicemailTask struct {
	VoicemailID       string                 `json:"voicemail_id"`
	AudioRef          string                 `json:"audio_ref"`
	CallerNumber      string                 `json:"caller_number"`
	CallerName        string                 `json:"caller_name,omitempty"`
	DurationSeconds   int                    `json:"duration_seconds"`
	PreferredLanguage string                 `json:"preferred_language"`
	Tier              model.SubscriptionTier `json:"tier"`
	CreatedAt         time.Time              `json:"created_at"`
}

// Input converts the task into the pipeline's request shape
func (t *VoicemailTask) Input() model.VoicemailInput {
	return model.VoicemailInput{
		AudioRef:          t.AudioRef,
		CallerNumber:      t.CallerNumber,
		CallerName:        t.CallerName,
		DurationSeconds:   t.DurationSeconds,
		PreferredLanguage: t.PreferredLanguage,
		Tier:              t.Tier,
	}
}
