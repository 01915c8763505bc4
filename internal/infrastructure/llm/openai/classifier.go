package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"voltway/internal/bootstrap/logging"
	"voltway/internal/domain/triage"
	"voltway/internal/errs"
	"voltway/internal/ports"
)

const classifierSystemPrompt = `You are a supply chain triage analyst for an electric scooter manufacturer.
Classify the supplier email into exactly one intent:
DELAY, PRICE_CHANGE, QUALITY_ALERT, CANCELLATION, DISCONTINUATION, PARTIAL_SHIPMENT, NEW_PROPOSAL, DEMAND_CHANGE, OTHER.

Score risk from 1 (informational) to 5 (production stops without action).
Extract the part id (like P323) and order id (like MO-2025-0042) when the email names them; use empty strings otherwise.
When the email announces a concrete change, capture the old and new value verbatim.
Keep reasoning to one or two sentences.`

// classificationPayload is the strict response contract. Every field is
// required so the provider cannot silently omit one.
type classificationPayload struct {
	Intent     string  `json:"intent"`
	RiskScore  int     `json:"risk_score"`
	Confidence float64 `json:"confidence"`
	PartID     string  `json:"part_id"`
	OrderID    string  `json:"order_id"`
	OldValue   string  `json:"old_value"`
	NewValue   string  `json:"new_value"`
	Reasoning  string  `json:"reasoning"`
}

// Classifier implements ports.MessageClassifier on the chat completions API
// with a strict JSON schema response format.
type Classifier struct {
	client openai.Client
	cfg    Config
	schema map[string]any
}

var _ ports.MessageClassifier = (*Classifier)(nil)

func NewClassifier(cfg Config) (*Classifier, error) {
	schema, err := reflectSchema(&classificationPayload{})
	if err != nil {
		return nil, errs.Wrap(err, "reflect classification schema")
	}
	return &Classifier{
		client: newClient(cfg),
		cfg:    cfg,
		schema: schema,
	}, nil
}

func (c *Classifier) Classify(ctx context.Context, msg triage.Message) (triage.Classification, error) {
	if ctx == nil {
		return triage.Classification{}, errors.New("context is required")
	}
	if err := msg.Validate(); err != nil {
		return triage.Classification{}, err
	}

	// One structural retry: a response that is not valid JSON or fails
	// semantic validation earns a second call, a second failure degrades to
	// the fallback classification instead of stalling the whole ingest batch.
	for structural := 0; structural < 2; structural++ {
		content, err := c.complete(ctx, msg)
		if err != nil {
			return triage.Classification{}, err
		}

		result, err := decodeClassification(content)
		if err == nil {
			return result, nil
		}

		logging.Warn(ctx, "classification violated schema",
			slog.String("filename", msg.Filename),
			slog.String("error", err.Error()),
		)
	}

	logging.Warn(ctx, "classification fell back to OTHER", slog.String("filename", msg.Filename))
	return triage.Fallback(), nil
}

func (c *Classifier) complete(ctx context.Context, msg triage.Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(classifierSystemPrompt),
			openai.UserMessage(formatMessage(msg)),
		},
		Temperature: openai.Float(c.cfg.Temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "email_classification",
					Schema: c.schema,
					Strict: openai.Bool(true),
				},
			},
		},
	}

	// Only provider calls retry here; decoding happens in the caller's
	// structural loop so a garbled body falls back instead of erroring out.
	var content string
	err := withRetries(ctx, c.cfg, "classify", func(ctx context.Context) error {
		resp, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return err
		}
		content = ""
		if len(resp.Choices) > 0 {
			content = resp.Choices[0].Message.Content
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

func decodeClassification(content string) (triage.Classification, error) {
	var payload classificationPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return triage.Classification{}, fmt.Errorf("%w: %v", ports.ErrSchemaViolation, err)
	}
	return payloadToClassification(payload)
}

func payloadToClassification(payload classificationPayload) (triage.Classification, error) {
	intent, err := triage.ParseIntent(payload.Intent)
	if err != nil {
		return triage.Classification{}, err
	}

	result := triage.Classification{
		Intent:     intent,
		RiskScore:  payload.RiskScore,
		Confidence: payload.Confidence,
		PartID:     strings.TrimSpace(payload.PartID),
		OrderID:    strings.TrimSpace(payload.OrderID),
		OldValue:   payload.OldValue,
		NewValue:   payload.NewValue,
		Reasoning:  strings.TrimSpace(payload.Reasoning),
	}
	if err := result.Validate(); err != nil {
		return triage.Classification{}, err
	}
	return result, nil
}

func formatMessage(msg triage.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\n", msg.Sender)
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	if !msg.ReceivedAt.IsZero() {
		fmt.Fprintf(&b, "Received: %s\n", msg.ReceivedAt.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "\n%s", msg.Body)
	return b.String()
}

// reflectSchema renders a struct as a plain JSON schema object suitable for
// strict response formats and tool parameter definitions.
func reflectSchema(v any) (map[string]any, error) {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	raw, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		return nil, err
	}

	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, err
	}
	delete(schema, "$schema")
	return schema, nil
}
