package assistant

import "regexp"

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// unsupportedNumbers reports whether a final answer states figures with no
// tool output behind them. Numbers the operator typed in the question are
// fine to echo; anything else requires at least one successful tool call in
// this question's scope.
func unsupportedNumbers(answer, question string, invocations []ToolInvocation) bool {
	for _, invocation := range invocations {
		if !invocation.Failed {
			return false
		}
	}

	claimed := numberPattern.FindAllString(answer, -1)
	if len(claimed) == 0 {
		return false
	}

	asked := make(map[string]struct{})
	for _, n := range numberPattern.FindAllString(question, -1) {
		asked[n] = struct{}{}
	}
	for _, n := range claimed {
		if _, ok := asked[n]; !ok {
			return true
		}
	}
	return false
}
