// Package ai talks to an OpenAI-compatible chat completions endpoint to
// generate practice questions and extract chapter lists.
package ai

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

	"examship-quiz-service/internal/domain"
	"examship-quiz-service/internal/logger"
)

const (
	defaultBaseURL    = "https://api.openai.com/v1"
	defaultModel      = "gpt-4o-mini"
	defaultTimeout    = 60 * time.Second
	maxContextChars   = 5000
	maxLoggedBodySize = 200
)

// FallbackChapters is returned by ExtractChapters whenever extraction fails.
var FallbackChapters = []string{"General Module 1", "Revision Set", "PYQ Practice"}

// ErrGeneratorDisabled is returned by Disabled when no API key is configured.
var ErrGeneratorDisabled = errors.New("question generator not configured")

// Client manages interactions with the chat completions API.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	log     *logger.Logger
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewClient(cfg Config, log *logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     logger.OrNop(log),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate asks the model for req.Count questions and validates the reply.
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest) ([]domain.Question, error) {
	prompt := fmt.Sprintf(`Act as an expert examiner. Generate %d high-quality multiple choice questions at %s difficulty for the topic: %q (practice set %d).
Focus on textbook patterns and previous year competitive exams.
Reply with JSON only: {"questions":[{"id":string,"text":string,"options":[string,...],"correctAnswerIndex":int,"explanation":string}]}.
Every question needs at least two options and correctAnswerIndex must index into options.`,
		req.Count, req.Difficulty, req.Topic, req.SetNumber)

	start := time.Now()
	content, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	questions, err := ParseQuestions(content, req)
	if err != nil {
		c.log.Warn("generator reply rejected", "topic", req.Topic, "error", err)
		return nil, err
	}
	c.log.Info("questions generated", "topic", req.Topic, "set", req.SetNumber, "count", len(questions), "duration", time.Since(start))
	return questions, nil
}

// ExtractChapters asks the model for chapter titles found in text. Any failure
// yields FallbackChapters.
func (c *Client) ExtractChapters(ctx context.Context, text string) []string {
	if len(text) > maxContextChars {
		text = text[:maxContextChars]
	}
	prompt := `Extract the chapter titles from this study material. Reply with JSON only: {"chapters":[string,...]}.

` + text
	content, err := c.complete(ctx, prompt)
	if err != nil {
		c.log.Warn("chapter extraction failed", "error", err)
		return fallbackChapters()
	}
	chapters, err := parseChapters(content)
	if err != nil || len(chapters) == 0 {
		c.log.Warn("chapter extraction reply rejected", "error", err)
		return fallbackChapters()
	}
	return chapters
}

func fallbackChapters() []string {
	return append([]string(nil), FallbackChapters...)
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:          c.model,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		Temperature:    0.7,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completion status %d: %s", resp.StatusCode, truncate(string(raw), maxLoggedBodySize))
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode chat completion: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", errors.New("chat completion returned no content")
	}
	return out.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Disabled is the generator used when no API key is configured.
type Disabled struct{}

func (Disabled) Generate(context.Context, domain.GenerationRequest) ([]domain.Question, error) {
	return nil, ErrGeneratorDisabled
}
