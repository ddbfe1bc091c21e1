package fonts

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"seehuhn.de/go/sfnt"
)

// MaxFileBytes bounds accepted font uploads.
const MaxFileBytes = 8 << 20

var (
	// ErrNotFont reports a payload that is not a TrueType or OpenType file.
	ErrNotFont = errors.New("payload is not a TrueType or OpenType font")
	// ErrTooLarge reports a payload over MaxFileBytes.
	ErrTooLarge = errors.New("font file exceeds size limit")
	// ErrEmpty reports a zero-length payload.
	ErrEmpty = errors.New("font file is empty")
)

// Metadata is what a font binary says about itself.
type Metadata struct {
	Family         string
	Style          string
	PostScriptName string
	Weight         int
	Italic         bool
	Format         Format
	SizeBytes      int64
	SHA256         string
}

// Apply copies parsed metadata onto a record, leaving identity fields alone.
func (m Metadata) Apply(f Font) Font {
	f.Family = m.Family
	f.Style = m.Style
	f.PostScriptName = m.PostScriptName
	f.Weight = m.Weight
	f.Italic = m.Italic
	f.Format = m.Format
	f.SizeBytes = m.SizeBytes
	f.SHA256 = m.SHA256
	return f
}

// Parse validates data as an sfnt font file and extracts catalog metadata.
func Parse(data []byte) (Metadata, error) {
	if len(data) == 0 {
		return Metadata{}, ErrEmpty
	}
	if len(data) > MaxFileBytes {
		return Metadata{}, ErrTooLarge
	}
	format, ok := DetectFormat(data)
	if !ok {
		return Metadata{}, ErrNotFont
	}

	parsed, err := sfnt.Read(bytes.NewReader(data))
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrNotFont, err)
	}

	family := strings.TrimSpace(parsed.FamilyName)
	if family == "" {
		return Metadata{}, fmt.Errorf("%w: missing family name", ErrNotFont)
	}
	weight := NormalizeWeight(int(parsed.Weight))
	sum := sha256.Sum256(data)

	return Metadata{
		Family:         family,
		Style:          StyleName(weight, parsed.IsItalic),
		PostScriptName: strings.TrimSpace(parsed.PostScriptName()),
		Weight:         weight,
		Italic:         parsed.IsItalic,
		Format:         format,
		SizeBytes:      int64(len(data)),
		SHA256:         hex.EncodeToString(sum[:]),
	}, nil
}

// DetectFormat inspects the sfnt version tag.
func DetectFormat(data []byte) (Format, bool) {
	if len(data) < 4 {
		return "", false
	}
	switch string(data[:4]) {
	case "\x00\x01\x00\x00", "true":
		return FormatTTF, true
	case "OTTO":
		return FormatOTF, true
	default:
		return "", false
	}
}

// NormalizeWeight snaps an OS/2 weight class to the CSS 100..900 scale.
// Zero means the table did not say and is treated as regular.
func NormalizeWeight(weight int) int {
	if weight <= 0 {
		return 400
	}
	rounded := ((weight + 50) / 100) * 100
	return min(max(rounded, 100), 900)
}

var weightNames = map[int]string{
	100: "Thin",
	200: "ExtraLight",
	300: "Light",
	400: "Regular",
	500: "Medium",
	600: "SemiBold",
	700: "Bold",
	800: "ExtraBold",
	900: "Black",
}

// StyleName builds a subfamily label such as "Bold Italic".
func StyleName(weight int, italic bool) string {
	name := weightNames[NormalizeWeight(weight)]
	if !italic {
		return name
	}
	if name == "Regular" {
		return "Italic"
	}
	return name + " Italic"
}
