package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// Client wraps the OpenAI Responses API for structured extraction calls.
type Client struct {
	client openai.Client
	model  string
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithRequestTimeout(60*time.Second),
		),
		model: model,
	}
}

// SetTestTransport points the client at a local test server.
func (c *Client) SetTestTransport(baseURL string) {
	c.client = openai.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(baseURL),
	)
}

// Complete sends one structured-output request and returns the raw output
// text. schemaName and schema define the strict JSON shape the model must
// produce.
func (c *Client) Complete(ctx context.Context, instructions, input, schemaName string, schema map[string]any) (string, error) {
	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:   schemaName,
			Schema: schema,
			Strict: openai.Bool(true),
			Type:   "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(1024),
		Instructions:    openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(input, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}

	out := resp.OutputText()
	if out == "" {
		return "", fmt.Errorf("empty response output")
	}
	return out, nil
}
