package engine

import (
	"strconv"

	"github.com/pageframe/litescan/internal/format"
	"github.com/pageframe/litescan/internal/sql/ast"
)

// compareValues orders two values for index descent: <0 if a<b, 0 if
// equal, >0 if a>b. Numeric values compare numerically when both
// coerce to a number; otherwise values compare by display string,
// matching the predicate evaluator's own fallback.
func compareValues(a, b format.Value) int {
	af, aok := a.Int64()
	bf, bok := b.Int64()
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	as, bs := a.String(), b.String()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

// literalValue converts a select-list/predicate literal AST node into
// the comparable Value domain.
func literalValue(e ast.Expr) (format.Value, bool) {
	switch n := e.(type) {
	case *ast.StringLiteral:
		return format.TextValue(n.Value), true
	case *ast.NumberLiteral:
		if i, err := strconv.ParseInt(n.Text, 10, 64); err == nil {
			return format.IntValue(i), true
		}
		if f, err := strconv.ParseFloat(n.Text, 64); err == nil {
			return format.FloatValue(f), true
		}
		return format.Value{}, false
	default:
		return format.Value{}, false
	}
}

// evalComparison applies one WHERE comparison to a column value. Per
// the source behavior this generalizes: "=" and "!=" compare display
// strings, the ordering operators coerce both sides to an integer and
// compare numerically, and a coercion failure is a false result for
// that row rather than a query-level error.
func evalComparison(op ast.CompareOp, left format.Value, right format.Value) bool {
	switch op {
	case ast.OpEqual:
		return left.String() == right.String()
	case ast.OpNotEqual:
		return left.String() != right.String()
	default:
		li, lok := left.Int64()
		ri, rok := right.Int64()
		if !lok || !rok {
			return false
		}
		switch op {
		case ast.OpLess:
			return li < ri
		case ast.OpLessEqual:
			return li <= ri
		case ast.OpGreater:
			return li > ri
		case ast.OpGreaterEqual:
			return li >= ri
		default:
			return false
		}
	}
}
