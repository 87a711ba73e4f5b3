// Package ai implements the natural-language query collaborator: it
// answers free-text questions over a serialized snapshot of the
// business data.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"

	"invoicing-api/internal/core"
)

// QueryAnswer is the structured output shape the model must return.
type QueryAnswer struct {
	Answer string `json:"answer" jsonschema_description:"A concise, professional answer to the user's question in Markdown format"`
}

// Agent wraps an optional OpenAI client. "Unconfigured" is a
// representable state: a zero API key yields an agent whose
// AnswerQuery fails with core.ErrUnavailable instead of a nil-pointer
// surprise at request time.
type Agent struct {
	client *openai.Client
}

// NewAgent builds an Agent. Pass an empty apiKey for an unconfigured
// agent; every other endpoint keeps working while AnswerQuery degrades.
func NewAgent(apiKey string) *Agent {
	if apiKey == "" {
		return &Agent{}
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

// Configured reports whether an API key was provided.
func (a *Agent) Configured() bool {
	return a.client != nil
}

// AnswerQuery sends the business snapshot and the user's question to
// the model and returns the text answer. today anchors date reasoning
// such as "which payments are late".
func (a *Agent) AnswerQuery(ctx context.Context, question string, snapshot []core.SnapshotClient, today time.Time) (string, error) {
	if !a.Configured() {
		return "", fmt.Errorf("OpenAI API key not configured: %w", core.ErrUnavailable)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize snapshot: %w", err)
	}

	prompt := fmt.Sprintf(`You are an expert business analyst AI for an invoicing application.
Your task is to answer questions based on the provided data.
Be concise, professional, and provide actionable insights in Markdown format.
Today's date is %s. Use this to determine if payments are late.

Here is the complete business data in JSON format:
%s

Based on the data above, please answer the following question: %q`,
		today.Format("2006-01-02"), data, question)

	schemaJSON, err := json.Marshal(generateSchema())
	if err != nil {
		return "", fmt.Errorf("marshal answer schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return "", fmt.Errorf("unmarshal answer schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:   constant.JSONSchema("json_schema"),
					Name:   "invoicing_query_answer",
					Strict: param.NewOpt(true),
					Schema: schemaMap,
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai responses error (%v): %w", err, core.ErrUnavailable)
	}

	content := resp.OutputText()
	if content == "" {
		return "", fmt.Errorf("empty response content: %w", core.ErrUnavailable)
	}

	var answer QueryAnswer
	if err := json.Unmarshal([]byte(content), &answer); err != nil {
		return "", fmt.Errorf("parse completion: %w", err)
	}
	return answer.Answer, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v QueryAnswer
	return reflector.Reflect(v)
}
