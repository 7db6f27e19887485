// Package filter resolves filter clauses into evaluators and folds their
// results into one decision per row.
package filter

import (
	"fmt"
	"strings"
)

// LogicOp represents a logical operator for combining clauses.
type LogicOp int

const (
	// LogicNone means no connective was given; it folds like LogicOR.
	LogicNone LogicOp = iota
	// LogicAND requires both sides to pass.
	LogicAND
	// LogicOR requires at least one side to pass.
	LogicOR
)

// String returns the string representation of a LogicOp.
func (op LogicOp) String() string {
	switch op {
	case LogicNone:
		return ""
	case LogicAND:
		return "and"
	case LogicOR:
		return "or"
	default:
		return fmt.Sprintf("unknown(%d)", op)
	}
}

// ParseLogicOp parses "and"/"or" in any case. An empty string is LogicNone.
func ParseLogicOp(s string) (LogicOp, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return LogicNone, nil
	case "and", "&&":
		return LogicAND, nil
	case "or", "||":
		return LogicOR, nil
	}
	return LogicNone, fmt.Errorf("%w %q", ErrInvalidLogicOp, s)
}

// Clause is one unresolved condition. Operator is the trailing connective:
// it decides how the next clause is folded into the result.
type Clause struct {
	Symbol   Symbol
	Operand  any
	Operator LogicOp
}

type resolved struct {
	symbol   Symbol
	eval     Evaluator
	operand  any
	operator LogicOp
}

// Chain is a compiled, immutable list of clauses. It holds no reference to
// the caller's clause values, so one Chain may be evaluated concurrently.
type Chain struct {
	clauses []resolved
}

// Compile resolves every clause once. Operands are passed through prepare
// (when non-nil) so per-row work stays minimal. Substring symbols also
// apply prepare to the text form of non-string values.
func Compile(clauses []Clause, mode NotEqualMode, prepare func(any) any) (*Chain, error) {
	c := &Chain{clauses: make([]resolved, len(clauses))}
	for i, cl := range clauses {
		eval, err := resolve(cl.Symbol, mode, prepare)
		if err != nil {
			return nil, fmt.Errorf("clause %d: %w", i, err)
		}
		switch cl.Operator {
		case LogicNone, LogicAND, LogicOR:
		default:
			return nil, fmt.Errorf("clause %d: %w %d", i, ErrInvalidLogicOp, cl.Operator)
		}
		operand := cl.Operand
		if prepare != nil {
			operand = prepare(operand)
		}
		c.clauses[i] = resolved{symbol: cl.Symbol, eval: eval, operand: operand, operator: cl.Operator}
	}
	return c, nil
}

// Len returns the number of clauses in the chain.
func (c *Chain) Len() int {
	return len(c.clauses)
}

// Evaluate folds the clauses left to right over value. The first clause
// seeds the result; clause i is combined using the operator recorded on
// clause i-1. An empty chain passes every value. typeOK is false if any
// clause compared incompatible types.
func (c *Chain) Evaluate(value any) (included bool, typeOK bool) {
	if len(c.clauses) == 0 {
		return true, true
	}

	typeOK = true
	for i, cl := range c.clauses {
		match, ok := cl.eval(value, cl.operand)
		if !ok {
			typeOK = false
		}
		if i == 0 {
			included = match
			continue
		}
		switch c.clauses[i-1].operator {
		case LogicAND:
			included = included && match
		default:
			included = included || match
		}
	}
	return included, typeOK
}

// Description renders the chain for logging, e.g. "(>= 5 and <= 12)".
func (c *Chain) Description() string {
	if len(c.clauses) == 0 {
		return "empty filter"
	}

	var b strings.Builder
	b.WriteString("(")
	for i, cl := range c.clauses {
		if i > 0 {
			op := c.clauses[i-1].operator
			if op == LogicNone {
				op = LogicOR
			}
			fmt.Fprintf(&b, " %s ", op)
		}
		fmt.Fprintf(&b, "%s %v", cl.symbol, cl.operand)
	}
	b.WriteString(")")
	return b.String()
}
