package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ProviderResult is the raw outcome of one provider call
type ProviderResult struct {
	TranslatedText string  `json:"translatedText"`
	DetectedSource string  `json:"detectedSourceLanguage,omitempty"`
	Confidence     float64 `json:"confidence,omitempty"`
}

// Provider is a single translation backend. New backends plug into the
// orchestrator through this interface; the failover chain never switches on
// provider identity.
type Provider interface {
	Name() string
	Translate(ctx context.Context, text, sourceLang, targetLang string) (*ProviderResult, error)
}

type translateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"sourceLanguage,omitempty"`
	TargetLanguage string `json:"targetLanguage"`
}

// RESTProvider talks to a translation backend over HTTP
type RESTProvider struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewRESTProvider creates an HTTP translation provider
func NewRESTProvider(name, baseURL, apiKey string, timeout time.Duration) *RESTProvider {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RESTProvider{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (p *RESTProvider) Name() string {
	return p.name
}

// Translate sends one translation request to the backend
func (p *RESTProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (*ProviderResult, error) {
	payload, err := json.Marshal(translateRequest{
		Text:           text,
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/translate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Api-Key %s", p.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("provider %s throttled: %s", p.name, string(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translation request failed: status=%d, body=%s", resp.StatusCode, string(respBody))
	}

	var result ProviderResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}
