// Package fonts defines the font record shared by the catalog, the pages, and
// the agent tools, plus binary validation for uploaded font files.
package fonts

import (
	"strings"
	"time"
)

// Format identifies the outline flavour of a font file.
type Format string

const (
	FormatTTF Format = "ttf"
	FormatOTF Format = "otf"
)

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatOTF:
		return "font/otf"
	case FormatTTF:
		return "font/ttf"
	default:
		return "application/octet-stream"
	}
}

// Font is one catalog entry.
type Font struct {
	ID             string    `json:"id" yaml:"id"`
	Family         string    `json:"family" yaml:"family"`
	Style          string    `json:"style" yaml:"style"`
	PostScriptName string    `json:"postscript_name" yaml:"postscript_name"`
	Weight         int       `json:"weight" yaml:"weight"`
	Italic         bool      `json:"italic" yaml:"italic"`
	Format         Format    `json:"format" yaml:"format"`
	SizeBytes      int64     `json:"size_bytes" yaml:"size_bytes"`
	SHA256         string    `json:"sha256" yaml:"sha256"`
	UploadedBy     string    `json:"uploaded_by,omitempty" yaml:"uploaded_by,omitempty"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
}

// DisplayName joins family and style for headings.
func (f Font) DisplayName() string {
	family := strings.TrimSpace(f.Family)
	style := strings.TrimSpace(f.Style)
	switch {
	case family == "":
		return style
	case style == "":
		return family
	default:
		return family + " " + style
	}
}

// CSSFamily is the font-family name used by @font-face rules for this entry.
// It is unique per record so two uploads of the same family never collide.
func (f Font) CSSFamily() string {
	return "ts-" + strings.TrimSpace(f.ID)
}

// Clone returns a copy of list that shares no backing array with it.
func Clone(list []Font) []Font {
	if list == nil {
		return nil
	}
	out := make([]Font, len(list))
	copy(out, list)
	return out
}
