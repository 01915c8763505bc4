package assistant

import (
	"context"
	"errors"
	"testing"

	"voltway/internal/ports"
)

func TestRegistryCatalogOrder(t *testing.T) {
	selector := &scriptedSelector{t: t}
	svc, _ := setupAssistant(t, selector, Options{})

	want := []string{
		"get_stock_status",
		"get_low_stock_alerts",
		"get_stock_summary",
		"get_stock_by_model",
		"check_part_usage",
		"get_email_history",
		"search_emails",
		"get_email_summary",
		"get_emails_by_risk",
		"get_open_issues",
		"get_issue_details",
		"create_issue",
		"update_issue_status",
		"resolve_issue",
		"get_issue_summary",
		"check_fulfillment",
		"calculate_safety_stock",
	}

	specs := svc.registry.specs()
	if len(specs) != len(want) {
		t.Fatalf("specs len = %d, want %d", len(specs), len(want))
	}
	for i, spec := range specs {
		if spec.Name != want[i] {
			t.Fatalf("specs[%d] = %q, want %q", i, spec.Name, want[i])
		}
		if spec.Description == "" || spec.Parameters == nil {
			t.Fatalf("spec %q incomplete: %+v", spec.Name, spec)
		}
	}
}

func TestRegistryRejectsUnknownArguments(t *testing.T) {
	selector := &scriptedSelector{t: t}
	svc, _ := setupAssistant(t, selector, Options{})

	_, err := svc.registry.dispatch(context.Background(), ports.ToolCall{
		Name:      "get_stock_status",
		Arguments: `{"part_id":"P323","verbose":true}`,
	})
	var argErr *ToolArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("dispatch() error = %v", err)
	}

	if _, err := svc.registry.dispatch(context.Background(), ports.ToolCall{Name: "nope"}); !errors.As(err, &argErr) {
		t.Fatalf("dispatch(unknown) error = %v", err)
	}
}

func TestRegistryEmptyArgumentsDefault(t *testing.T) {
	selector := &scriptedSelector{t: t}
	svc, _ := setupAssistant(t, selector, Options{})

	result, err := svc.registry.dispatch(context.Background(), ports.ToolCall{Name: "get_stock_summary"})
	if err != nil {
		t.Fatalf("dispatch() error = %v", err)
	}
	summary, ok := result.(ports.StockSummary)
	if !ok {
		t.Fatalf("dispatch() result = %T", result)
	}
	if summary.TotalParts != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}
