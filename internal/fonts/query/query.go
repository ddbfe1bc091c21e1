// Package query parses AIP-160 filter and AIP-132 order_by expressions over
// font catalog fields. A parsed Query can narrow an in-memory font list or be
// rendered as a SQL WHERE/ORDER BY pair for the catalog store.
package query

import (
	"errors"
	"fmt"
	"strings"

	"go.einride.tech/aip/filtering"
	"go.einride.tech/aip/ordering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// ErrInvalid marks filter or order_by input the caller must fix.
var ErrInvalid = errors.New("invalid font query")

// FieldType describes a filterable field type.
type FieldType string

const (
	FieldString    FieldType = "string"
	FieldInt       FieldType = "int"
	FieldBool      FieldType = "bool"
	FieldTimestamp FieldType = "timestamp"
)

type field struct {
	kind   FieldType
	column string
}

// fields maps filter identifiers to their type and catalog column.
var fields = map[string]field{
	"id":              {kind: FieldString, column: "id"},
	"family":          {kind: FieldString, column: "family"},
	"style":           {kind: FieldString, column: "style"},
	"postscript_name": {kind: FieldString, column: "postscript_name"},
	"format":          {kind: FieldString, column: "format"},
	"uploaded_by":     {kind: FieldString, column: "uploaded_by"},
	"weight":          {kind: FieldInt, column: "weight"},
	"size_bytes":      {kind: FieldInt, column: "size_bytes"},
	"italic":          {kind: FieldBool, column: "italic"},
	"created_at":      {kind: FieldTimestamp, column: "created_at"},
}

// defaultOrder is the catalog's natural order.
var defaultOrder = []ordering.Field{
	{Path: "family"},
	{Path: "weight"},
	{Path: "italic"},
	{Path: "id"},
}

// Query is a parsed filter plus ordering.
type Query struct {
	Filter  string
	OrderBy string

	expr  *expr.Expr
	order []ordering.Field
}

// Parse validates both expressions. Empty strings select everything in the
// default order.
func Parse(filterStr string, orderBy string) (Query, error) {
	q := Query{
		Filter:  strings.TrimSpace(filterStr),
		OrderBy: strings.TrimSpace(orderBy),
	}

	if q.Filter != "" {
		decls, err := declarations()
		if err != nil {
			return Query{}, fmt.Errorf("create declarations: %w", err)
		}
		parsed, err := filtering.ParseFilterString(q.Filter, decls)
		if err != nil {
			return Query{}, fmt.Errorf("%w: parse filter: %v", ErrInvalid, err)
		}
		q.expr = parsed.CheckedExpr.GetExpr()
		if err := validateExpr(q.expr); err != nil {
			return Query{}, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}

	order, err := parseOrder(q.OrderBy)
	if err != nil {
		return Query{}, err
	}
	q.order = order
	return q, nil
}

// MustParse is Parse for static expressions known to be valid.
func MustParse(filterStr string, orderBy string) Query {
	q, err := Parse(filterStr, orderBy)
	if err != nil {
		panic(err)
	}
	return q
}

// IsZero reports whether the query neither filters nor reorders.
func (q Query) IsZero() bool {
	return q.expr == nil && q.OrderBy == ""
}

func declarations() (*filtering.Declarations, error) {
	opts := []filtering.DeclarationOption{filtering.DeclareStandardFunctions()}
	for name, f := range fields {
		switch f.kind {
		case FieldString:
			opts = append(opts, filtering.DeclareIdent(name, filtering.TypeString))
		case FieldInt:
			opts = append(opts, filtering.DeclareIdent(name, filtering.TypeInt))
		case FieldBool:
			opts = append(opts, filtering.DeclareIdent(name, filtering.TypeBool))
		case FieldTimestamp:
			opts = append(opts, filtering.DeclareIdent(name, filtering.TypeTimestamp))
		default:
			return nil, fmt.Errorf("unsupported field type for %s", name)
		}
	}
	return filtering.NewDeclarations(opts...)
}

func parseOrder(orderBy string) ([]ordering.Field, error) {
	if orderBy == "" {
		return defaultOrder, nil
	}
	var parsed ordering.OrderBy
	if err := parsed.UnmarshalString(orderBy); err != nil {
		return nil, fmt.Errorf("%w: parse order_by: %v", ErrInvalid, err)
	}
	for _, f := range parsed.Fields {
		if _, ok := fields[f.Path]; !ok {
			return nil, fmt.Errorf("%w: unknown order_by field: %s", ErrInvalid, f.Path)
		}
	}
	// id breaks ties so equal keys keep a stable order across backends.
	out := append([]ordering.Field(nil), parsed.Fields...)
	if !hasPath(out, "id") {
		out = append(out, ordering.Field{Path: "id"})
	}
	return out, nil
}

func hasPath(list []ordering.Field, path string) bool {
	for _, f := range list {
		if f.Path == path {
			return true
		}
	}
	return false
}

// validateExpr walks the tree once so unsupported shapes fail at parse time
// instead of on the first evaluated row.
func validateExpr(e *expr.Expr) error {
	if e == nil {
		return nil
	}
	call, ok := e.ExprKind.(*expr.Expr_CallExpr)
	if !ok {
		return fmt.Errorf("unsupported expression type: %T", e.ExprKind)
	}
	switch call.CallExpr.Function {
	case "_&&_", "AND", "_||_", "OR":
		if len(call.CallExpr.Args) != 2 {
			return fmt.Errorf("%s requires 2 arguments", call.CallExpr.Function)
		}
		for _, arg := range call.CallExpr.Args {
			if err := validateExpr(arg); err != nil {
				return err
			}
		}
		return nil
	case "NOT", "!_":
		if len(call.CallExpr.Args) != 1 {
			return fmt.Errorf("NOT requires 1 argument")
		}
		return validateExpr(call.CallExpr.Args[0])
	}
	if _, err := comparisonOperator(call.CallExpr.Function); err != nil {
		return err
	}
	if len(call.CallExpr.Args) != 2 {
		return fmt.Errorf("comparison requires 2 arguments")
	}
	name, err := extractFieldName(call.CallExpr.Args[0])
	if err != nil {
		return err
	}
	if _, ok := fields[name]; !ok {
		return fmt.Errorf("unknown field: %s", name)
	}
	_, err = extractValue(call.CallExpr.Args[1])
	return err
}

func comparisonOperator(function string) (string, error) {
	switch function {
	case "_==_", "=":
		return "=", nil
	case "_!=_", "!=":
		return "!=", nil
	case "_<_", "<":
		return "<", nil
	case "_<=_", "<=":
		return "<=", nil
	case "_>_", ">":
		return ">", nil
	case "_>=_", ">=":
		return ">=", nil
	default:
		return "", fmt.Errorf("unsupported function: %s", function)
	}
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}
