// Package ai is the glue between the note service and the hosted LLM
// API. It carries no prompt-engineering surface: the system prompts are
// fixed constants and the client only marshals requests and unwraps
// completions.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/joshwoodland/boredcertified/internal/config"
	"github.com/joshwoodland/boredcertified/internal/model"
	"github.com/joshwoodland/boredcertified/pkg/circuitbreaker"
	"github.com/joshwoodland/boredcertified/pkg/logger"
)

const (
	soapSystemPrompt = `You are a clinical scribe. Given a patient-visit transcript, produce a SOAP note as a JSON object with the keys "subjective", "objective", "assessment", and "plan". Respond with JSON only.`

	summarySystemPrompt = `Summarize the following clinical note in one sentence for a visit list. Respond with the sentence only.`
)

// Generator is the note service's view of the LLM glue.
type Generator interface {
	GenerateSOAP(ctx context.Context, transcript string) (*model.SOAPSections, error)
	Summarize(ctx context.Context, noteText string) (string, error)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Client calls the chat-completions API behind a circuit breaker so a
// degraded upstream fails fast instead of tying up request handlers.
type Client struct {
	http    *resty.Client
	model   string
	breaker *circuitbreaker.CircuitBreaker
	logger  *logger.Logger
}

func NewClient(cfg config.OpenAIConfig, log *logger.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(1*time.Second).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:  httpClient,
		model: cfg.Model,
		breaker: circuitbreaker.New(circuitbreaker.Settings{
			Name:        "openai",
			MaxFailures: 5,
			Cooldown:    30 * time.Second,
		}),
		logger: log,
	}
}

func (c *Client) GenerateSOAP(ctx context.Context, transcript string) (*model.SOAPSections, error) {
	content, err := c.complete(ctx, soapSystemPrompt, transcript, true)
	if err != nil {
		return nil, err
	}

	var sections model.SOAPSections
	if err := json.Unmarshal([]byte(content), &sections); err != nil {
		return nil, fmt.Errorf("failed to parse SOAP response: %w", err)
	}
	return &sections, nil
}

func (c *Client) Summarize(ctx context.Context, noteText string) (string, error) {
	content, err := c.complete(ctx, summarySystemPrompt, noteText, false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (c *Client) complete(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	if jsonMode {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var out chatResponse
	err := c.breaker.Execute(func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(req).
			SetResult(&out).
			SetError(&out).
			Post("/chat/completions")
		if err != nil {
			return err
		}
		if resp.IsError() {
			if out.Error != nil {
				return fmt.Errorf("completion request failed: %s", out.Error.Message)
			}
			return fmt.Errorf("completion request failed: status %d", resp.StatusCode())
		}
		return nil
	})
	if err != nil {
		c.logger.Error(err, "llm completion failed")
		return "", err
	}

	if len(out.Choices) == 0 {
		return "", fmt.Errorf("completion response had no choices")
	}
	return out.Choices[0].Message.Content, nil
}
