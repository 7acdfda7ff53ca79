package karma

import (
	"regexp"
	"strings"

	"github.com/lasombra/rebot/internal/domain"
)

// Chat clients commonly autocorrect a double dash into an em- or en-dash,
// so both are accepted as decrement operators.
const operatorAlternation = `\+\+|--|—|–`

var (
	// anywherePattern finds a karma expression at any position: a non-empty
	// run of non-whitespace characters directly followed by an operator,
	// with the operator followed by whitespace or end of string.
	anywherePattern = regexp.MustCompile(`(\S+)(` + operatorAlternation + `)(?:\s|$)`)

	// wholeMessagePattern requires the (trimmed) message to be exactly one
	// karma expression.
	wholeMessagePattern = regexp.MustCompile(`^(\S+)(` + operatorAlternation + `)$`)
)

// ContainsExpression reports whether text contains a karma expression
// anywhere. It is the cheap gate used before attempting extraction.
func ContainsExpression(text string) bool {
	return anywherePattern.MatchString(text)
}

// Match extracts the first karma expression found anywhere in text.
// The target is returned as captured, without normalization.
func Match(text string) (domain.Expression, bool) {
	return fromMatch(anywherePattern.FindStringSubmatch(text))
}

// MatchWholeMessage extracts a karma expression only when the trimmed
// message consists of exactly one expression. This is the stricter
// admission check the engine applies before touching any state.
func MatchWholeMessage(text string) (domain.Expression, bool) {
	return fromMatch(wholeMessagePattern.FindStringSubmatch(strings.TrimSpace(text)))
}

func fromMatch(groups []string) (domain.Expression, bool) {
	if groups == nil {
		return domain.Expression{}, false
	}
	return domain.Expression{
		Target:   groups[1],
		Operator: operatorFor(groups[2]),
	}, true
}

func operatorFor(token string) domain.Operator {
	if token == "++" {
		return domain.OperatorIncrement
	}
	return domain.OperatorDecrement
}
