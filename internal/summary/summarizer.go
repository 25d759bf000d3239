package summary

import "strings"

// Threshold is the transcript length in characters above which a summary
// is generated
const Threshold = 200

// Summarizer produces a short extractive summary of a transcript
type Summarizer struct{}

// NewSummarizer creates a summarizer
func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// Summarize keeps the first and last sentences of the transcript. Text with
// two or fewer sentences is returned unchanged.
func (s *Summarizer) Summarize(transcript string) string {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return ""
	}

	var sentences []string
	for _, part := range strings.Split(transcript, ".") {
		part = strings.TrimSpace(part)
		if part != "" {
			sentences = append(sentences, part)
		}
	}

	if len(sentences) <= 2 {
		return transcript
	}

	return sentences[0] + ". " + sentences[len(sentences)-1] + "."
}
