package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yegors/voxrelay/pkg/logger"
)

// DefaultBaseURL is the provider API endpoint used when none is configured
const DefaultBaseURL = "https://api.deepgram.com"

// listenPath is the prerecorded transcription endpoint
const listenPath = "/v1/listen"

// ProviderError reports any non-success outcome from the speech provider:
// transport failure, non-2xx status, or an unusable response body. It is
// never retried; a single failed attempt surfaces immediately.
type ProviderError struct {
	Status int    // HTTP status code, 0 for transport and decode failures
	Reason string
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider error (status %d): %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("provider error: %s", e.Reason)
}

// Client handles communication with Deepgram's prerecorded transcription API
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a Deepgram client. An empty baseURL falls back to the
// upstream default; timeoutSeconds <= 0 falls back to 2 minutes. The timeout
// bounds the single request; hitting it surfaces as a ProviderError.
func NewClient(apiKey, baseURL, model string, timeoutSeconds int, log *logger.Logger) *Client {
	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	if apiKey == "" {
		log.Warn("Deepgram API key is empty - transcription requests will fail")
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: base,
		model:   model,
		logger:  log.Named("deepgram"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Transcribe issues exactly one request to the provider and normalizes the
// response into the canonical result shape. The audio travels by URL
// reference when the request carries one, otherwise as raw bytes with the
// declared MIME type. Every failure is a *ProviderError.
func (c *Client) Transcribe(ctx context.Context, req Request) (*Result, error) {
	endpoint := c.baseURL + listenPath + "?" + c.queryParams(req)

	var body io.Reader
	var contentType string
	if req.Audio.URL != "" {
		payload, err := urlPayload(req.Audio.URL)
		if err != nil {
			return nil, &ProviderError{Reason: err.Error()}
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	} else {
		body = bytes.NewReader(req.Audio.Data)
		contentType = req.Audio.MIMEType
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, &ProviderError{Reason: fmt.Sprintf("failed to build request: %v", err)}
	}
	httpReq.Header.Set("Authorization", "Token "+c.apiKey)
	httpReq.Header.Set("Content-Type", contentType)

	c.logger.Debug("Sending transcription request",
		logger.String("model", c.model),
		logger.String("language", req.Language),
		logger.Bool("by_url", req.Audio.URL != ""),
		logger.String("mime_type", req.Audio.MIMEType),
		logger.Int64("declared_size", req.Audio.Size))

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Reason: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Status: resp.StatusCode, Reason: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Provider returned non-success status",
			logger.Int("status", resp.StatusCode),
			logger.Duration("latency", time.Since(start)))
		return nil, &ProviderError{Status: resp.StatusCode, Reason: strings.TrimSpace(string(respBody))}
	}

	result, schema, err := normalizeResponse(respBody)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Transcription completed",
		logger.String("schema", schema),
		logger.String("detected_language", result.DetectedLanguage),
		logger.Int("utterances", len(result.Utterances)),
		logger.Int("transcript_chars", len(result.Transcript)),
		logger.Duration("latency", time.Since(start)))

	return result, nil
}

// queryParams encodes the model, language, and formatting flags
func (c *Client) queryParams(req Request) string {
	params := url.Values{}
	params.Set("model", c.model)
	if req.Language != "" {
		params.Set("language", req.Language)
	}
	params.Set("smart_format", strconv.FormatBool(req.Options.SmartFormat))
	params.Set("punctuate", strconv.FormatBool(req.Options.Punctuate))
	params.Set("paragraphs", strconv.FormatBool(req.Options.Paragraphs))
	params.Set("diarize", strconv.FormatBool(req.Options.Diarize))
	params.Set("detect_language", strconv.FormatBool(req.Options.DetectLanguage))
	if req.Options.Paragraphs || req.Options.Diarize {
		params.Set("utterances", "true")
	}
	return params.Encode()
}

// urlPayload builds the JSON body for transcription by URL reference
func urlPayload(audioURL string) ([]byte, error) {
	if _, err := url.ParseRequestURI(audioURL); err != nil {
		return nil, fmt.Errorf("invalid audio URL: %w", err)
	}
	payload, err := json.Marshal(struct {
		URL string `json:"url"`
	}{URL: audioURL})
	if err != nil {
		return nil, fmt.Errorf("failed to encode URL payload: %w", err)
	}
	return payload, nil
}
