package query

import (
	"fmt"
	"strings"
	"time"

	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// SQLCondition is a WHERE clause fragment with positional parameters.
type SQLCondition struct {
	Clause string
	Params []any
}

// Where renders the filter against the catalog's fonts table. An empty
// filter yields an empty clause.
func (q Query) Where() (SQLCondition, error) {
	return translateExpr(q.expr)
}

// OrderClause renders the ordering as a SQL ORDER BY list.
func (q Query) OrderClause() string {
	order := q.order
	if order == nil {
		order = defaultOrder
	}
	parts := make([]string, 0, len(order))
	for _, f := range order {
		direction := "ASC"
		if f.Desc {
			direction = "DESC"
		}
		parts = append(parts, fields[f.Path].column+" "+direction)
	}
	return strings.Join(parts, ", ")
}

func translateExpr(e *expr.Expr) (SQLCondition, error) {
	if e == nil {
		return SQLCondition{}, nil
	}
	call, ok := e.ExprKind.(*expr.Expr_CallExpr)
	if !ok {
		return SQLCondition{}, fmt.Errorf("unsupported expression type: %T", e.ExprKind)
	}
	switch call.CallExpr.Function {
	case "_&&_", "AND":
		return translateJoin(call.CallExpr.Args, "AND")
	case "_||_", "OR":
		return translateJoin(call.CallExpr.Args, "OR")
	case "NOT", "!_":
		inner, err := translateExpr(call.CallExpr.Args[0])
		if err != nil {
			return SQLCondition{}, err
		}
		return SQLCondition{Clause: "(NOT " + inner.Clause + ")", Params: inner.Params}, nil
	}
	return translateComparison(call.CallExpr)
}

func translateJoin(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("%s requires 2 arguments", op)
	}
	left, err := translateExpr(args[0])
	if err != nil {
		return SQLCondition{}, err
	}
	right, err := translateExpr(args[1])
	if err != nil {
		return SQLCondition{}, err
	}
	return SQLCondition{
		Clause: fmt.Sprintf("(%s %s %s)", left.Clause, op, right.Clause),
		Params: append(left.Params, right.Params...),
	}, nil
}

func translateComparison(call *expr.Expr_Call) (SQLCondition, error) {
	op, err := comparisonOperator(call.Function)
	if err != nil {
		return SQLCondition{}, err
	}
	if len(call.Args) != 2 {
		return SQLCondition{}, fmt.Errorf("comparison requires 2 arguments")
	}
	name, err := extractFieldName(call.Args[0])
	if err != nil {
		return SQLCondition{}, err
	}
	f, ok := fields[name]
	if !ok {
		return SQLCondition{}, fmt.Errorf("unknown field: %s", name)
	}
	value, err := extractValue(call.Args[1])
	if err != nil {
		return SQLCondition{}, err
	}
	return SQLCondition{
		Clause: fmt.Sprintf("%s %s ?", f.column, op),
		Params: []any{sqlValue(value)},
	}, nil
}

// sqlValue converts filter constants to the catalog's column encodings:
// booleans as 0/1 and timestamps as unix milliseconds.
func sqlValue(value any) any {
	switch v := value.(type) {
	case bool:
		if v {
			return int64(1)
		}
		return int64(0)
	case time.Time:
		return v.UTC().UnixMilli()
	default:
		return v
	}
}
