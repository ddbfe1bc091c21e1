package templates

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/typeshelf/internal/fonts"
	_ "github.com/louisbranch/typeshelf/internal/platform/i18n"
	module "github.com/louisbranch/typeshelf/internal/services/web/module"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestT_NilLocalizer(t *testing.T) {
	t.Parallel()

	if got := T(nil, "some.key"); got != "some.key" {
		t.Fatalf("T(nil, ...) = %q", got)
	}
	if got := T(nil, 42); got != "" {
		t.Fatalf("T(nil, 42) = %q, want empty", got)
	}
}

func TestBrandTypographyViewerRendersEveryFont(t *testing.T) {
	t.Parallel()

	loc := message.NewPrinter(language.AmericanEnglish)
	list := []fonts.Font{
		{ID: "a1", Family: "Inter", Style: "Regular", Weight: 400, Format: fonts.FormatTTF, UploadedBy: "user-1"},
		{ID: "b2", Family: "Lora", Style: "Italic", Weight: 400, Italic: true, Format: fonts.FormatOTF, UploadedBy: "user-2"},
	}
	out := render(t, BrandTypographyViewer(list, ViewerOptions{Loc: loc, ViewerID: "user-1"}))

	for _, marker := range []string{
		`data-count="2"`,
		`data-font-id="a1"`,
		`data-font-id="b2"`,
		"Inter Regular",
		"Lora Italic",
		`@font-face{font-family:"ts-a1";src:url("/app/fonts/a1/file") format("truetype")`,
		`format("opentype");font-weight:400;font-style:italic`,
		"2 fonts",
	} {
		if !strings.Contains(out, marker) {
			t.Fatalf("output missing %q:\n%s", marker, out)
		}
	}
	if strings.Count(out, "/delete") != 1 || !strings.Contains(out, "/app/settings/typography/fonts/a1/delete") {
		t.Fatalf("expected delete action only for the viewer's font:\n%s", out)
	}
}

func TestBrandTypographyViewerEscapesNames(t *testing.T) {
	t.Parallel()

	out := render(t, BrandTypographyViewer([]fonts.Font{{ID: `x"</style>`, Family: "<b>Evil</b>"}}, ViewerOptions{}))
	if strings.Contains(out, "<b>Evil</b>") || strings.Contains(out, `x"</style>`) {
		t.Fatalf("unescaped output:\n%s", out)
	}
}

func TestBrandTypographyViewerEmpty(t *testing.T) {
	t.Parallel()

	out := render(t, BrandTypographyViewer(nil, ViewerOptions{Loc: message.NewPrinter(language.AmericanEnglish)}))
	if !strings.Contains(out, "No fonts in the catalog yet.") {
		t.Fatalf("empty state missing:\n%s", out)
	}
}

func TestFontUploaderHasNoFontList(t *testing.T) {
	t.Parallel()

	out := render(t, FontUploader(UploaderForm{Error: "bad", Uploaded: "Inter Bold"}, message.NewPrinter(language.BrazilianPortuguese)))
	for _, marker := range []string{`enctype="multipart/form-data"`, `name="font"`, `action="/app/settings/typography/fonts"`, "bad", "Inter Bold"} {
		if !strings.Contains(out, marker) {
			t.Fatalf("output missing %q:\n%s", marker, out)
		}
	}
	if strings.Contains(out, "data-font-id") {
		t.Fatalf("uploader rendered font entries:\n%s", out)
	}
}

func TestAppLayoutWrapsChildren(t *testing.T) {
	t.Parallel()

	child := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>child</p>")
		return err
	})
	layout := AppLayout(LayoutOptions{
		Title:       "Brand typography",
		Lang:        "pt-BR",
		Loc:         message.NewPrinter(language.BrazilianPortuguese),
		CurrentPath: "/app/brand/typography",
		Viewer:      module.Viewer{UserID: "user-1"},
	})
	var buf bytes.Buffer
	if err := layout.Render(templ.WithChildren(context.Background(), child), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, marker := range []string{`<html lang="pt-BR">`, "<p>child</p>", `aria-current="page"`, `action="/logout"`, "lang=en-US"} {
		if !strings.Contains(out, marker) {
			t.Fatalf("layout missing %q:\n%s", marker, out)
		}
	}
}

func TestAppErrorState(t *testing.T) {
	t.Parallel()

	out := render(t, AppErrorState(404, message.NewPrinter(language.AmericanEnglish)))
	if !strings.Contains(out, `data-status="404"`) || !strings.Contains(out, "Page not found") {
		t.Fatalf("error state:\n%s", out)
	}
}

func TestBrandTypographyControlsNotice(t *testing.T) {
	t.Parallel()

	out := render(t, BrandTypographyControls(QueryForm{Filter: `family = "Inter"`, Invalid: true}, nil))
	if !strings.Contains(out, `value="family = &#34;Inter&#34;"`) || !strings.Contains(out, "error.query.invalid") {
		t.Fatalf("controls:\n%s", out)
	}
}
