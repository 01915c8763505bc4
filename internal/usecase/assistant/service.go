package assistant

import (
	"time"

	"voltway/internal/ports"
	"voltway/internal/usecase/issues"
)

// Options bounds the dispatch loop and parameterizes the calculation tools.
type Options struct {
	// MaxToolIterations caps model steps per question; the final step is
	// forced to prose.
	MaxToolIterations int
	// HistoryTurns is how many prior question/answer pairs are replayed from
	// the conversation store.
	HistoryTurns int

	LowStockThreshold int
	ServiceLevelZ     float64
	SigmaCoefficient  float64
}

type Service struct {
	selector ports.ToolSelector
	stock    ports.StockRepository
	emails   ports.EmailRepository
	orders   ports.OrderRepository
	bom      ports.BOMRepository
	issues   *issues.Service
	cache    ports.Cache
	opts     Options
	now      func() time.Time

	registry *registry
}

func NewService(
	selector ports.ToolSelector,
	stock ports.StockRepository,
	emails ports.EmailRepository,
	orders ports.OrderRepository,
	bom ports.BOMRepository,
	issueService *issues.Service,
	cache ports.Cache,
	opts Options,
	now func() time.Time,
) (*Service, error) {
	if opts.MaxToolIterations <= 0 {
		opts.MaxToolIterations = 6
	}
	if opts.HistoryTurns < 0 {
		opts.HistoryTurns = 0
	}
	if opts.LowStockThreshold <= 0 {
		opts.LowStockThreshold = 50
	}
	if now == nil {
		now = time.Now
	}

	s := &Service{
		selector: selector,
		stock:    stock,
		emails:   emails,
		orders:   orders,
		bom:      bom,
		issues:   issueService,
		cache:    cache,
		opts:     opts,
		now:      now,
	}

	reg, err := buildRegistry(s)
	if err != nil {
		return nil, err
	}
	s.registry = reg
	return s, nil
}

// ToolInvocation is one executed tool call, surfaced so operators can audit
// how an answer was produced.
type ToolInvocation struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
	Result    string `json:"result"`
	Failed    bool   `json:"failed"`
}

type AskInput struct {
	ConversationID string
	Question       string
}

type AskOutput struct {
	ConversationID string `json:"conversation_id"`
	Answer         string `json:"answer"`
	Refused        bool   `json:"refused"`
	// ToolLimitReached marks answers produced after the iteration budget ran
	// out; the model wanted more tool calls than it was allowed.
	ToolLimitReached bool             `json:"tool_limit_reached"`
	ToolCalls        []ToolInvocation `json:"tool_calls"`
}
