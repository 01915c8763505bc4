package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"voltway/internal/errs"
	"voltway/internal/ports"
)

// ToolArgumentError marks arguments the model produced that do not decode
// into the tool's contract. It is fed back to the model as the tool result so
// the loop can self-correct instead of aborting.
type ToolArgumentError struct {
	Tool   string
	Reason string
}

func (e *ToolArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, e.Reason)
}

type tool struct {
	spec ports.ToolSpec
	run  func(ctx context.Context, raw json.RawMessage) (any, error)
}

// registry holds the tool catalog in a stable order; the model sees the same
// listing every step.
type registry struct {
	order []string
	tools map[string]tool
}

func (r *registry) specs() []ports.ToolSpec {
	specs := make([]ports.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.tools[name].spec)
	}
	return specs
}

func (r *registry) dispatch(ctx context.Context, call ports.ToolCall) (any, error) {
	t, ok := r.tools[call.Name]
	if !ok {
		return nil, &ToolArgumentError{Tool: call.Name, Reason: "unknown tool"}
	}
	return t.run(ctx, json.RawMessage(call.Arguments))
}

func (r *registry) add(t tool) {
	r.order = append(r.order, t.spec.Name)
	r.tools[t.spec.Name] = t
}

// newTool binds a typed handler to a name, reflecting the argument schema
// from the args struct. Unknown fields from the model are rejected, not
// silently dropped.
func newTool[A any](name, description string, run func(ctx context.Context, args A) (any, error)) (tool, error) {
	schema, err := schemaFor(new(A))
	if err != nil {
		return tool{}, errs.Wrapf(err, "reflect schema for %s", name)
	}

	return tool{
		spec: ports.ToolSpec{
			Name:        name,
			Description: description,
			Parameters:  schema,
		},
		run: func(ctx context.Context, raw json.RawMessage) (any, error) {
			if len(raw) == 0 {
				raw = json.RawMessage("{}")
			}
			var args A
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&args); err != nil {
				return nil, &ToolArgumentError{Tool: name, Reason: err.Error()}
			}
			return run(ctx, args)
		},
	}, nil
}

func schemaFor(v any) (map[string]any, error) {
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

func buildRegistry(s *Service) (*registry, error) {
	reg := &registry{tools: make(map[string]tool)}

	builders := []func() (tool, error){
		s.stockStatusTool,
		s.lowStockAlertsTool,
		s.stockSummaryTool,
		s.stockByModelTool,
		s.partUsageTool,

		s.emailHistoryTool,
		s.searchEmailsTool,
		s.emailSummaryTool,
		s.emailsByRiskTool,

		s.openIssuesTool,
		s.issueDetailsTool,
		s.createIssueTool,
		s.updateIssueStatusTool,
		s.resolveIssueTool,
		s.issueSummaryTool,

		s.checkFulfillmentTool,
		s.safetyStockTool,
	}
	for _, build := range builders {
		t, err := build()
		if err != nil {
			return nil, err
		}
		reg.add(t)
	}
	return reg, nil
}
