package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/typeshelf/internal/fonts"
	"github.com/louisbranch/typeshelf/internal/fonts/query"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
	catalogTimeout  = 5 * time.Second
)

// Catalog is the read-only catalog surface exposed to agents.
type Catalog interface {
	ListFonts(ctx context.Context, q query.Query) ([]fonts.Font, error)
	GetFont(ctx context.Context, fontID string) (fonts.Font, bool, error)
}

// FontResult is the agent view of one catalog entry.
type FontResult struct {
	ID             string `json:"id" jsonschema:"font identifier"`
	Family         string `json:"family" jsonschema:"font family name"`
	Style          string `json:"style" jsonschema:"subfamily such as Regular or Bold Italic"`
	DisplayName    string `json:"display_name" jsonschema:"family and style joined for headings"`
	PostScriptName string `json:"postscript_name,omitempty" jsonschema:"PostScript name from the font name table"`
	Weight         int    `json:"weight" jsonschema:"CSS weight between 100 and 900"`
	Italic         bool   `json:"italic" jsonschema:"whether the face is italic"`
	Format         string `json:"format" jsonschema:"outline format (ttf or otf)"`
	SizeBytes      int64  `json:"size_bytes" jsonschema:"file size in bytes"`
	SHA256         string `json:"sha256" jsonschema:"hex SHA-256 of the font file"`
	CreatedAt      string `json:"created_at,omitempty" jsonschema:"RFC3339 timestamp when the font was added"`
}

// ListFontsInput represents the MCP tool input for listing fonts.
type ListFontsInput struct {
	Filter   string `json:"filter,omitempty" jsonschema:"AIP-160 filter, for example family = \"Inter\" AND weight >= 600"`
	OrderBy  string `json:"order_by,omitempty" jsonschema:"AIP-132 ordering, for example family, weight desc"`
	PageSize int    `json:"page_size,omitempty" jsonschema:"maximum fonts returned (default 50, max 200)"`
}

// ListFontsResult represents the MCP tool output for listing fonts.
type ListFontsResult struct {
	Fonts     []FontResult `json:"fonts" jsonschema:"matching fonts in catalog order"`
	Total     int          `json:"total" jsonschema:"number of fonts matching the filter"`
	Truncated bool         `json:"truncated" jsonschema:"true when more fonts matched than page_size"`
}

// ListFontsTool defines the MCP tool schema for listing fonts.
func ListFontsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_fonts",
		Description: "Lists brand fonts in the catalog. Accepts an AIP-160 filter and an AIP-132 order_by over the font fields.",
	}
}

// ListFontsHandler executes a font listing request.
func ListFontsHandler(catalog Catalog) mcp.ToolHandlerFor[ListFontsInput, ListFontsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListFontsInput) (*mcp.CallToolResult, ListFontsResult, error) {
		q, err := query.Parse(input.Filter, input.OrderBy)
		if err != nil {
			return nil, ListFontsResult{}, fmt.Errorf("invalid query: %w", err)
		}
		size, err := pageSize(input.PageSize)
		if err != nil {
			return nil, ListFontsResult{}, err
		}

		runCtx, cancel := context.WithTimeout(ctx, catalogTimeout)
		defer cancel()
		list, err := catalog.ListFonts(runCtx, q)
		if err != nil {
			return nil, ListFontsResult{}, fmt.Errorf("list fonts failed: %w", err)
		}

		result := ListFontsResult{Fonts: []FontResult{}, Total: len(list)}
		if len(list) > size {
			list = list[:size]
			result.Truncated = true
		}
		for _, font := range list {
			result.Fonts = append(result.Fonts, fontResult(font))
		}
		return nil, result, nil
	}
}

// GetFontInput represents the MCP tool input for reading one font.
type GetFontInput struct {
	ID string `json:"id" jsonschema:"font identifier"`
}

// GetFontTool defines the MCP tool schema for reading one font.
func GetFontTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_font",
		Description: "Returns metadata for one catalog font by id.",
	}
}

// GetFontHandler executes a single font lookup.
func GetFontHandler(catalog Catalog) mcp.ToolHandlerFor[GetFontInput, FontResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetFontInput) (*mcp.CallToolResult, FontResult, error) {
		fontID := strings.TrimSpace(input.ID)
		if fontID == "" {
			return nil, FontResult{}, fmt.Errorf("id is required")
		}

		runCtx, cancel := context.WithTimeout(ctx, catalogTimeout)
		defer cancel()
		font, ok, err := catalog.GetFont(runCtx, fontID)
		if err != nil {
			return nil, FontResult{}, fmt.Errorf("get font failed: %w", err)
		}
		if !ok {
			return nil, FontResult{}, fmt.Errorf("font %q not found", fontID)
		}
		return nil, fontResult(font), nil
	}
}

func pageSize(requested int) (int, error) {
	switch {
	case requested < 0:
		return 0, fmt.Errorf("page_size must not be negative")
	case requested == 0:
		return defaultPageSize, nil
	case requested > maxPageSize:
		return maxPageSize, nil
	default:
		return requested, nil
	}
}

func fontResult(font fonts.Font) FontResult {
	result := FontResult{
		ID:             font.ID,
		Family:         font.Family,
		Style:          font.Style,
		DisplayName:    font.DisplayName(),
		PostScriptName: font.PostScriptName,
		Weight:         font.Weight,
		Italic:         font.Italic,
		Format:         string(font.Format),
		SizeBytes:      font.SizeBytes,
		SHA256:         font.SHA256,
	}
	if !font.CreatedAt.IsZero() {
		result.CreatedAt = font.CreatedAt.UTC().Format(time.RFC3339)
	}
	return result
}
