package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/logger"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultMaxWait      = 30 * time.Minute
)

// Client talks to the speech-to-text provider over HTTP. Short voicemails go
// through the synchronous recognize endpoint; longer audio is handed to a
// long-running operation that is polled until completion.
type Client struct {
	apiKey       string
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
	maxWait      time.Duration
}

// NewClient creates a speech-to-text client
func NewClient(baseURL, apiKey string, callTimeout time.Duration) *Client {
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: callTimeout,
		},
		pollInterval: defaultPollInterval,
		maxWait:      defaultMaxWait,
	}
}

// Recognize performs short-form synchronous recognition
func (c *Client) Recognize(ctx context.Context, audioURI, language string, alternates []string) (*Result, error) {
	reqBody := RecognizeRequest{
		Config: RecognitionConfig{
			LanguageCode:             language,
			AlternativeLanguageCodes: alternates,
			MaxAlternatives:          3,
			EnableWordConfidence:     true,
		},
		Audio: AudioSource{URI: audioURI},
	}

	logger.Debug("Starting short-form recognition",
		zap.String("audio_uri", audioURI),
		zap.String("language", language))

	var result Result
	if err := c.post(ctx, "/v1/speech:recognize", reqBody, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// StartLongRecognition kicks off an asynchronous recognition operation and
// returns its operation ID
func (c *Client) StartLongRecognition(ctx context.Context, audioURI, language string, alternates []string) (string, error) {
	reqBody := RecognizeRequest{
		Config: RecognitionConfig{
			LanguageCode:             language,
			AlternativeLanguageCodes: alternates,
			MaxAlternatives:          3,
			EnableWordConfidence:     true,
		},
		Audio: AudioSource{URI: audioURI},
	}

	logger.Debug("Starting long-running recognition",
		zap.String("audio_uri", audioURI),
		zap.String("language", language))

	var opResp OperationResponse
	if err := c.post(ctx, "/v1/speech:longrunningrecognize", reqBody, &opResp); err != nil {
		return "", err
	}

	logger.Info("Recognition operation started", zap.String("operation_id", opResp.ID))

	return opResp.ID, nil
}

// WaitForResult polls the operation until it completes or the wait budget
// runs out
func (c *Client) WaitForResult(ctx context.Context, operationID string) (*Result, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.pollInterval
	policy.MaxInterval = 30 * time.Second
	policy.MaxElapsedTime = c.maxWait

	var result *Result
	started := time.Now()

	operation := func() error {
		var opResp OperationResponse
		if err := c.get(ctx, fmt.Sprintf("/v1/operations/%s", operationID), &opResp); err != nil {
			return backoff.Permanent(err)
		}

		if !opResp.Done {
			logger.Debug("Recognition in progress",
				zap.String("operation_id", operationID),
				zap.Duration("elapsed", time.Since(started)))
			return fmt.Errorf("operation %s not done", operationID)
		}

		if opResp.Error != nil {
			return backoff.Permanent(fmt.Errorf("recognition failed: %s (code: %d)",
				opResp.Error.Message, opResp.Error.Code))
		}

		result = opResp.Response
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}

	if result == nil {
		result = &Result{}
	}

	logger.Info("Recognition completed",
		zap.String("operation_id", operationID),
		zap.Int("segments", len(result.Segments)))

	return result, nil
}

// RecognizeLongRunning starts an operation and waits for its result
func (c *Client) RecognizeLongRunning(ctx context.Context, audioURI, language string, alternates []string) (*Result, error) {
	operationID, err := c.StartLongRecognition(ctx, audioURI, language, alternates)
	if err != nil {
		return nil, err
	}
	return c.WaitForResult(ctx, operationID)
}

func (c *Client) post(ctx context.Context, path string, body, dest interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, dest)
}

func (c *Client) get(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest interface{}) error {
	req.Header.Set("Authorization", fmt.Sprintf("Api-Key %s", c.apiKey))

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("recognition request failed: status=%d, body=%s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, dest); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}
