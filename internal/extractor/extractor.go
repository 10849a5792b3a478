// Package extractor turns free-text chat messages into a partial field map
// over the record schema, via one structured LLM call per turn.
package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/rolodex/internal/openai"
	"github.com/MikeSquared-Agency/rolodex/internal/schema"
)

// ErrExtractionUnavailable wraps any failure of the extraction call —
// transport errors and unparseable replies alike. Callers must treat it as
// "zero fields extracted this turn", never as fatal.
var ErrExtractionUnavailable = errors.New("extraction unavailable")

var extractionSchema = openai.GenerateSchema[extraction]()

type Extractor struct {
	llm    *openai.Client
	logger *slog.Logger
}

func New(llm *openai.Client, logger *slog.Logger) *Extractor {
	return &Extractor{llm: llm, logger: logger}
}

// Extract runs one extraction pass over text. When missing is non-empty the
// prompt names exactly those fields so the model focuses a second-pass reply
// on them. The result contains only known schema fields with non-empty
// values; fields the model could not determine are simply absent.
func (e *Extractor) Extract(ctx context.Context, text string, missing []string) (map[string]string, error) {
	instructions := systemPrompt
	if len(missing) > 0 {
		labels := make([]string, len(missing))
		for i, name := range missing {
			if f, ok := schema.Lookup(name); ok {
				labels[i] = fmt.Sprintf("%s (%s)", name, f.Label)
			} else {
				labels[i] = name
			}
		}
		instructions = fmt.Sprintf(focusPromptf, strings.Join(labels, ", "))
	}

	e.logger.Debug("extracting fields",
		"text_len", len(text),
		"missing", missing,
	)

	raw, err := e.llm.Complete(ctx, instructions, fmt.Sprintf(userPromptf, text), "InteractionFields", extractionSchema)
	if err != nil {
		return nil, fmt.Errorf("llm call: %w: %w", ErrExtractionUnavailable, err)
	}

	var ext extraction
	if err := decodeModelJSON(raw, &ext); err != nil {
		e.logger.Error("failed to parse extraction response",
			"error", err,
			"raw", raw,
		)
		return nil, fmt.Errorf("parse extraction: %w: %w", ErrExtractionUnavailable, err)
	}

	result := make(map[string]string)
	for name, value := range ext.fieldValues() {
		value = strings.TrimSpace(value)
		if value == "" || !schema.Known(name) {
			continue
		}
		result[name] = value
	}

	e.logger.Info("extraction complete", "fields", len(result))
	return result, nil
}

// decodeModelJSON unmarshals a model reply, tolerating leading/trailing
// prose around the JSON object.
func decodeModelJSON(raw string, v any) error {
	s := strings.TrimSpace(raw)
	if s == "" {
		return fmt.Errorf("empty reply")
	}

	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in reply")
	}
	return json.Unmarshal([]byte(s[start:end+1]), v)
}
