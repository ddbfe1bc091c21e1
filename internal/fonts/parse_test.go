package fonts

import (
	"bytes"
	"errors"
	"testing"

	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

func TestParseGoRegular(t *testing.T) {
	t.Parallel()

	meta, err := Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if meta.Family != "Go" {
		t.Fatalf("Family = %q, want %q", meta.Family, "Go")
	}
	if meta.Format != FormatTTF {
		t.Fatalf("Format = %q, want %q", meta.Format, FormatTTF)
	}
	if meta.Italic {
		t.Fatalf("Italic = true, want false")
	}
	if meta.Weight != 400 || meta.Style != "Regular" {
		t.Fatalf("weight/style = %d/%q, want 400/Regular", meta.Weight, meta.Style)
	}
	if meta.SizeBytes != int64(len(goregular.TTF)) {
		t.Fatalf("SizeBytes = %d, want %d", meta.SizeBytes, len(goregular.TTF))
	}
	if len(meta.SHA256) != 64 {
		t.Fatalf("SHA256 = %q, want hex digest", meta.SHA256)
	}
	if meta.PostScriptName == "" {
		t.Fatalf("PostScriptName is empty")
	}
}

func TestParseItalicVariants(t *testing.T) {
	t.Parallel()

	italic, err := Parse(goitalic.TTF)
	if err != nil {
		t.Fatalf("Parse(italic) error = %v", err)
	}
	if !italic.Italic {
		t.Fatalf("italic font reported upright")
	}

	boldItalic, err := Parse(gobolditalic.TTF)
	if err != nil {
		t.Fatalf("Parse(bold italic) error = %v", err)
	}
	if !boldItalic.Italic || boldItalic.Weight <= italic.Weight {
		t.Fatalf("bold italic = %+v, want heavier italic than %+v", boldItalic, italic)
	}
}

func TestParseRejectsNonFonts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "empty", data: nil, want: ErrEmpty},
		{name: "text", data: []byte("hello, typography"), want: ErrNotFont},
		{name: "truncated sfnt", data: goregular.TTF[:64], want: ErrNotFont},
		{name: "too large", data: bytes.Repeat([]byte{0}, MaxFileBytes+1), want: ErrTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse(tc.data); !errors.Is(err, tc.want) {
				t.Fatalf("Parse() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		data   string
		want   Format
		wantOK bool
	}{
		{data: "\x00\x01\x00\x00rest", want: FormatTTF, wantOK: true},
		{data: "truerest", want: FormatTTF, wantOK: true},
		{data: "OTTOrest", want: FormatOTF, wantOK: true},
		{data: "wOFF", wantOK: false},
		{data: "ab", wantOK: false},
	}
	for _, tc := range tests {
		got, ok := DetectFormat([]byte(tc.data))
		if got != tc.want || ok != tc.wantOK {
			t.Fatalf("DetectFormat(%q) = %q,%v want %q,%v", tc.data, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestStyleName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		weight int
		italic bool
		want   string
	}{
		{weight: 400, want: "Regular"},
		{weight: 400, italic: true, want: "Italic"},
		{weight: 700, italic: true, want: "Bold Italic"},
		{weight: 0, want: "Regular"},
		{weight: 1000, want: "Black"},
		{weight: 350, want: "Regular"},
		{weight: 340, want: "Light"},
	}
	for _, tc := range tests {
		if got := StyleName(tc.weight, tc.italic); got != tc.want {
			t.Fatalf("StyleName(%d, %v) = %q, want %q", tc.weight, tc.italic, got, tc.want)
		}
	}
}

func TestCloneDetachesBackingArray(t *testing.T) {
	t.Parallel()

	src := []Font{{ID: "1", Family: "Inter"}}
	dup := Clone(src)
	dup[0].Family = "Changed"
	if src[0].Family != "Inter" {
		t.Fatalf("Clone shared backing array")
	}
	if Clone(nil) != nil {
		t.Fatalf("Clone(nil) should stay nil")
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	if got := (Font{Family: "Inter", Style: "Bold"}).DisplayName(); got != "Inter Bold" {
		t.Fatalf("DisplayName() = %q", got)
	}
	if got := (Font{Family: "Inter"}).DisplayName(); got != "Inter" {
		t.Fatalf("DisplayName() = %q", got)
	}
}
