package llm

import (
	"context"
	"errors"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
)

const (
	DefaultGeminiModel = "gemini-1.5-flash"
	DefaultLocation    = "us-central1"
)

// GeminiOptions tunes the note-generation model. Zero values use defaults.
type GeminiOptions struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

func (o GeminiOptions) withDefaults() GeminiOptions {
	if o.Model == "" {
		o.Model = DefaultGeminiModel
	}
	if o.Temperature == 0 {
		o.Temperature = 0.4
	}
	if o.MaxOutputTokens == 0 {
		o.MaxOutputTokens = 4096
	}
	return o
}

type VertexGemini struct {
	client *vertexgenai.Client
	model  *vertexgenai.GenerativeModel
	name   string
}

func NewVertexGemini(ctx context.Context, projectID, location string, opts GeminiOptions) (*VertexGemini, error) {
	if projectID == "" {
		return nil, errors.New("vertex gemini: project id is required")
	}
	if location == "" {
		location = DefaultLocation
	}
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	opts = opts.withDefaults()
	m := c.GenerativeModel(opts.Model)
	m.SetTemperature(opts.Temperature)
	m.SetMaxOutputTokens(opts.MaxOutputTokens)
	m.SystemInstruction = &vertexgenai.Content{
		Parts: []vertexgenai.Part{vertexgenai.Text("Reply with a single markdown document and nothing else.")},
	}
	return &VertexGemini{client: c, model: m, name: opts.Model}, nil
}

// Model is the Gemini model name requests are sent to.
func (v *VertexGemini) Model() string { return v.name }

func (v *VertexGemini) Close() error { return v.client.Close() }

// StreamAnswer streams the text parts of every candidate. The chunk channel
// is closed first; errs then yields at most one error.
func (v *VertexGemini) StreamAnswer(ctx context.Context, prompt string) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errs := make(chan error, 1)

	go func() {
		defer close(errs)
		defer close(out)

		it := v.model.GenerateContentStream(ctx, vertexgenai.Text(prompt))
		for {
			resp, err := it.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				errs <- err
				return
			}
			for _, t := range textParts(resp) {
				select {
				case out <- t:
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}
		}
	}()

	return out, errs
}

func textParts(resp *vertexgenai.GenerateContentResponse) []string {
	var parts []string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(vertexgenai.Text); ok && t != "" {
				parts = append(parts, string(t))
			}
		}
	}
	return parts
}
