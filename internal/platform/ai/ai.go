// Package ai adapts Gemini to the two things the application asks of a model: free text
// and JSON extracted from an uploaded document.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"google.golang.org/genai"

	"gdp/internal/platform/metrics"
)

var (
	ErrUnavailable = errors.New("ai service not configured")
	ErrMalformed   = errors.New("ai reply is not valid json")
)

type TextOptions struct {
	SystemInstruction string
	Temperature       float32
	TopK              float32
	TopP              float32
}

// Generator is the generative model as the domain sees it. Replies are untrusted.
type Generator interface {
	SuggestText(ctx context.Context, prompt string, opts TextOptions) (string, error)
	ExtractStructuredData(ctx context.Context, data []byte, mimeType, instructions string, temperature float32) (json.RawMessage, error)
}

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// New returns a Gemini-backed generator, or one that always fails with ErrUnavailable
// when no API key is configured.
func New(ctx context.Context, cfg Config, m *metrics.Collector) (Generator, error) {
	if cfg.APIKey == "" {
		return disabled{}, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &gemini{models: client.Models, model: cfg.Model, timeout: cfg.Timeout, metrics: m}, nil
}

type disabled struct{}

func (disabled) SuggestText(context.Context, string, TextOptions) (string, error) {
	return "", ErrUnavailable
}

func (disabled) ExtractStructuredData(context.Context, []byte, string, string, float32) (json.RawMessage, error) {
	return nil, ErrUnavailable
}

type gemini struct {
	models  *genai.Models
	model   string
	timeout time.Duration
	metrics *metrics.Collector
}

func (g *gemini) SuggestText(ctx context.Context, prompt string, opts TextOptions) (string, error) {
	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(opts.Temperature)}
	if opts.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(opts.SystemInstruction, genai.RoleUser)
	}
	if opts.TopK > 0 {
		cfg.TopK = genai.Ptr(opts.TopK)
	}
	if opts.TopP > 0 {
		cfg.TopP = genai.Ptr(opts.TopP)
	}
	text, err := g.generate(ctx, genai.Text(prompt), cfg)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (g *gemini) ExtractStructuredData(ctx context.Context, data []byte, mimeType, instructions string, temperature float32) (json.RawMessage, error) {
	contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromBytes(data, mimeType),
		genai.NewPartFromText(instructions),
	}, genai.RoleUser)}
	text, err := g.generate(ctx, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(temperature),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, err
	}
	raw := StripFences(text)
	if !json.Valid([]byte(raw)) {
		g.metrics.Inc(metrics.AIFailures)
		return nil, ErrMalformed
	}
	return json.RawMessage(raw), nil
}

func (g *gemini) generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	g.metrics.Inc(metrics.AIRequests)
	resp, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		g.metrics.Inc(metrics.AIFailures)
		slog.Warn("gemini request failed", "model", g.model, "error", err)
		return "", fmt.Errorf("gemini: %w", err)
	}
	return resp.Text(), nil
}

var fence = regexp.MustCompile("(?s)^```(\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")

// StripFences unwraps a reply enclosed in a markdown code fence.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if m := fence.FindStringSubmatch(text); m != nil && m[2] != "" {
		return strings.TrimSpace(m[2])
	}
	return text
}
