// Package describe generates short menu descriptions for products.
package describe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-2.5-flash"

	NotConfiguredText = "API Key not configured. Please add your Gemini API key."
	FailedText        = "Failed to generate description. Please try again."

	requestTimeout = 15 * time.Second
)

// generator is the subset of *genai.Models used by Gemini.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini describes products with a Gemini model. Describe never fails;
// a missing key or a failed call yields a fixed message instead.
type Gemini struct {
	gen   generator
	model string
	log   *zap.Logger
}

// New creates a Gemini describer. An empty apiKey gives a describer that
// always returns NotConfiguredText.
func New(ctx context.Context, apiKey string, log *zap.Logger) (*Gemini, error) {
	g := &Gemini{model: DefaultModel, log: log}
	if apiKey == "" {
		log.Warn("gemini api key not set, product description generation disabled")
		return g, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g.gen = client.Models
	return g, nil
}

// Describe returns a description of productName under 150 characters.
func (g *Gemini) Describe(ctx context.Context, productName string) string {
	if g.gen == nil {
		return NotConfiguredText
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := g.gen.GenerateContent(ctx, g.model, genai.Text(prompt(productName)), nil)
	if err != nil {
		g.log.Error("generate description", zap.String("product", productName), zap.Error(err))
		return FailedText
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		g.log.Warn("empty description from model", zap.String("product", productName))
		return FailedText
	}
	return text
}

func prompt(productName string) string {
	return fmt.Sprintf("Generate a short, appealing product description for a cafe product named %q. "+
		"The description should be suitable for a point-of-sale system menu. "+
		"Keep it under 150 characters. Be creative and enticing.", productName)
}
