package triage

import (
	"fmt"
	"strings"
)

// Intent is the fixed-enumeration category of a supplier message.
type Intent string

const (
	IntentDelay           Intent = "DELAY"
	IntentPriceChange     Intent = "PRICE_CHANGE"
	IntentQualityAlert    Intent = "QUALITY_ALERT"
	IntentCancellation    Intent = "CANCELLATION"
	IntentDiscontinuation Intent = "DISCONTINUATION"
	IntentPartialShipment Intent = "PARTIAL_SHIPMENT"
	IntentNewProposal     Intent = "NEW_PROPOSAL"
	IntentDemandChange    Intent = "DEMAND_CHANGE"
	IntentOther           Intent = "OTHER"
)

var allIntents = []Intent{
	IntentDelay,
	IntentPriceChange,
	IntentQualityAlert,
	IntentCancellation,
	IntentDiscontinuation,
	IntentPartialShipment,
	IntentNewProposal,
	IntentDemandChange,
	IntentOther,
}

// Intents returns the closed intent enumeration in declaration order.
func Intents() []Intent {
	out := make([]Intent, len(allIntents))
	copy(out, allIntents)
	return out
}

func (i Intent) Valid() bool {
	for _, known := range allIntents {
		if i == known {
			return true
		}
	}
	return false
}

// ParseIntent normalizes free-form model output into the enumeration.
func ParseIntent(raw string) (Intent, error) {
	candidate := Intent(strings.ToUpper(strings.TrimSpace(raw)))
	if !candidate.Valid() {
		return "", fmt.Errorf("%w: unknown intent %q", ErrValidation, raw)
	}
	return candidate, nil
}
