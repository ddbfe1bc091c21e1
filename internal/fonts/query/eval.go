package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/louisbranch/typeshelf/internal/fonts"
)

// Apply returns the fonts matching the filter in query order. The input is
// never modified.
func (q Query) Apply(list []fonts.Font) ([]fonts.Font, error) {
	out := make([]fonts.Font, 0, len(list))
	for _, font := range list {
		ok, err := q.Match(font)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, font)
		}
	}
	order := q.order
	if order == nil {
		order = defaultOrder
	}
	slices.SortStableFunc(out, func(a, b fonts.Font) int {
		for _, f := range order {
			c, err := compareValues(resolve(a, f.Path), resolve(b, f.Path))
			if err != nil || c == 0 {
				continue
			}
			if f.Desc {
				return -c
			}
			return c
		}
		return 0
	})
	return out, nil
}

// Match reports whether one font satisfies the filter.
func (q Query) Match(font fonts.Font) (bool, error) {
	return evaluate(q.expr, func(name string) (any, bool) {
		if _, ok := fields[name]; !ok {
			return nil, false
		}
		return resolve(font, name), true
	})
}

func resolve(font fonts.Font, name string) any {
	switch name {
	case "id":
		return font.ID
	case "family":
		return font.Family
	case "style":
		return font.Style
	case "postscript_name":
		return font.PostScriptName
	case "format":
		return string(font.Format)
	case "uploaded_by":
		return font.UploadedBy
	case "weight":
		return int64(font.Weight)
	case "size_bytes":
		return font.SizeBytes
	case "italic":
		return font.Italic
	case "created_at":
		return font.CreatedAt
	default:
		return nil
	}
}

type resolver func(name string) (any, bool)

func evaluate(e *expr.Expr, lookup resolver) (bool, error) {
	if e == nil {
		return true, nil
	}
	call, ok := e.ExprKind.(*expr.Expr_CallExpr)
	if !ok {
		return false, fmt.Errorf("unsupported expression type: %T", e.ExprKind)
	}
	args := call.CallExpr.Args
	switch call.CallExpr.Function {
	case "_&&_", "AND":
		left, err := evaluate(args[0], lookup)
		if err != nil || !left {
			return left, err
		}
		return evaluate(args[1], lookup)
	case "_||_", "OR":
		left, err := evaluate(args[0], lookup)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return evaluate(args[1], lookup)
	case "NOT", "!_":
		inner, err := evaluate(args[0], lookup)
		return !inner, err
	}

	op, err := comparisonOperator(call.CallExpr.Function)
	if err != nil {
		return false, err
	}
	name, err := extractFieldName(args[0])
	if err != nil {
		return false, err
	}
	left, ok := lookup(name)
	if !ok {
		return false, fmt.Errorf("unknown field: %s", name)
	}
	right, err := extractValue(args[1])
	if err != nil {
		return false, err
	}
	c, err := compareValues(left, right)
	if err != nil {
		return false, err
	}
	switch op {
	case "=":
		return c == 0, nil
	case "!=":
		return c != 0, nil
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	default:
		return c >= 0, nil
	}
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		return extractConstValue(kind.ConstExpr)
	case *expr.Expr_CallExpr:
		if kind.CallExpr.Function == "timestamp" && len(kind.CallExpr.Args) == 1 {
			return extractTimestampValue(kind.CallExpr.Args[0])
		}
		return nil, fmt.Errorf("unsupported function in value position: %s", kind.CallExpr.Function)
	default:
		return nil, fmt.Errorf("expected constant or timestamp, got %T", kind)
	}
}

func extractConstValue(c *expr.Constant) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("nil constant")
	}
	switch kind := c.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return int64(kind.Uint64Value), nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}

func extractTimestampValue(e *expr.Expr) (time.Time, error) {
	if e == nil {
		return time.Time{}, fmt.Errorf("nil timestamp argument")
	}
	kind, ok := e.ExprKind.(*expr.Expr_ConstExpr)
	if !ok {
		return time.Time{}, fmt.Errorf("timestamp argument must be a constant string")
	}
	raw, ok := kind.ConstExpr.ConstantKind.(*expr.Constant_StringValue)
	if !ok {
		return time.Time{}, fmt.Errorf("timestamp argument must be a string")
	}
	t, err := time.Parse(time.RFC3339Nano, raw.StringValue)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp format: %s", raw.StringValue)
	}
	return t.UTC(), nil
}

func compareValues(left any, right any) (int, error) {
	switch l := left.(type) {
	case string:
		r, ok := right.(string)
		if !ok {
			return 0, fmt.Errorf("type mismatch: string vs %T", right)
		}
		return strings.Compare(l, r), nil
	case int64:
		switch r := right.(type) {
		case int64:
			return cmp.Compare(l, r), nil
		case float64:
			return cmp.Compare(float64(l), r), nil
		default:
			return 0, fmt.Errorf("type mismatch: number vs %T", right)
		}
	case bool:
		r, ok := right.(bool)
		if !ok {
			return 0, fmt.Errorf("type mismatch: bool vs %T", right)
		}
		switch {
		case l == r:
			return 0, nil
		case !l:
			return -1, nil
		default:
			return 1, nil
		}
	case time.Time:
		r, ok := right.(time.Time)
		if !ok {
			return 0, fmt.Errorf("type mismatch: timestamp vs %T", right)
		}
		return l.Compare(r), nil
	default:
		return 0, fmt.Errorf("unsupported value type: %T", left)
	}
}
