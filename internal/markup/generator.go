package markup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"graphion/internal/logging"
	"graphion/internal/services"
	"graphion/internal/services/gemini"
)

// TextGenerator is the slice of the Gemini client the generator needs.
type TextGenerator interface {
	Generate(ctx context.Context, req gemini.Request) (gemini.Response, error)
}

// Document is the sanitized markup handed to frame capture.
type Document struct {
	HTML         string
	Summary      Summary
	FinishReason string
}

// Generator produces animation markup for a prompt.
type Generator struct {
	client      TextGenerator
	instruction string
	logger      *slog.Logger
}

// NewGenerator builds a generator whose system instruction targets viewport.
func NewGenerator(client TextGenerator, viewport Viewport, logger *slog.Logger) *Generator {
	return &Generator{
		client:      client,
		instruction: SystemInstruction(viewport),
		logger:      logging.NewComponentLogger(logger, "markup"),
	}
}

// Generate performs exactly one model call and returns the sanitized document.
func (g *Generator) Generate(ctx context.Context, prompt string) (Document, error) {
	logger := logging.WithContext(ctx, g.logger)
	if strings.TrimSpace(prompt) == "" {
		return Document{}, services.Wrap(services.ErrPromptTooShort, "markup", "generate", "", nil)
	}

	resp, err := g.client.Generate(ctx, gemini.Request{
		SystemInstruction: g.instruction,
		Prompt:            prompt,
	})
	if err != nil {
		return Document{}, err
	}

	doc := Sanitize(resp.Text)
	if doc == "" {
		return Document{}, services.Wrap(services.ErrGenerationBlocked, "markup", "sanitize", "reply contained only code fences", nil)
	}
	summary, err := Summarize(doc)
	if err != nil {
		return Document{}, services.Wrap(services.ErrGenerationBlocked, "markup", "tokenize", "unreadable markup", err)
	}
	if summary.Elements == 0 {
		return Document{}, services.Wrap(services.ErrGenerationBlocked, "markup", "tokenize",
			fmt.Sprintf("reply has no html elements: %s", snippet(doc)), nil)
	}

	if resp.FinishReason != "" && resp.FinishReason != "STOP" {
		logging.WarnWithContext(logger, "markup generation ended early", "markup_truncated",
			logging.String("finish_reason", resp.FinishReason),
			logging.String(logging.FieldImpact, "animation may be incomplete"),
			logging.String(logging.FieldErrorHint, "raise gemini.max_output_tokens or simplify the prompt"),
		)
	}
	logger.Info("markup generated",
		logging.String(logging.FieldEventType, "markup_generated"),
		logging.Int("bytes", len(doc)),
		logging.Int("elements", summary.Elements),
		logging.Int("inline_scripts", summary.InlineScripts),
		logging.String("external_scripts", strings.Join(summary.ExternalScripts, ",")),
		logging.Int64("output_tokens", resp.OutputTokens),
	)
	return Document{HTML: doc, Summary: summary, FinishReason: resp.FinishReason}, nil
}
