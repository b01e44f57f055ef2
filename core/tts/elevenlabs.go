package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io/v1"
	defaultModelID = "eleven_multilingual_v2"

	// maxAudioBytes bounds a single synthesized clip.
	maxAudioBytes = 8 << 20
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("tts: api key not configured")

// VoiceSettings are the ElevenLabs voice tuning parameters.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// DefaultVoiceSettings is the warm radio-host delivery.
var DefaultVoiceSettings = VoiceSettings{
	Stability:       0.55,
	SimilarityBoost: 0.7,
	Style:           0.6,
	UseSpeakerBoost: true,
}

// Client calls the ElevenLabs text-to-speech endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	voiceID    string
	modelID    string
	settings   VoiceSettings
	httpClient *http.Client
}

// NewClient creates a client for voiceID. An empty apiKey disables synthesis.
func NewClient(apiKey, voiceID string) *Client {
	return &Client{
		baseURL:  defaultBaseURL,
		apiKey:   apiKey,
		voiceID:  voiceID,
		modelID:  defaultModelID,
		settings: DefaultVoiceSettings,
		httpClient: &http.Client{
			Timeout: time.Second * 20,
		},
	}
}

// SetBaseURL sets the API endpoint.
func (c *Client) SetBaseURL(url string) {
	if url != "" {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// SetModel selects the synthesis model.
func (c *Client) SetModel(modelID string) {
	if modelID != "" {
		c.modelID = modelID
	}
}

// SetTimeout sets the per-request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
}

// Enabled reports whether the client has credentials.
func (c *Client) Enabled() bool {
	return c.apiKey != "" && c.voiceID != ""
}

// Voice identifies the voice and model; synthesized clips are only
// interchangeable when this matches.
func (c *Client) Voice() string {
	return c.voiceID + "/" + c.modelID
}

// Synthesize renders text as MPEG audio.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	payload, err := json.Marshal(struct {
		Text          string        `json:"text"`
		ModelID       string        `json:"model_id"`
		VoiceSettings VoiceSettings `json:"voice_settings"`
	}{text, c.modelID, c.settings})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("synthesis returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	return audio, nil
}
