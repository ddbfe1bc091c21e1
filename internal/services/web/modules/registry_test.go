package modules

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/typeshelf/internal/services/web/routepath"
)

func TestDefaultModules(t *testing.T) {
	t.Parallel()

	public := DefaultPublicModules(Dependencies{}, ModuleResolvers{})
	protected := DefaultProtectedModules(Dependencies{}, ModuleResolvers{})

	var publicIDs, protectedIDs []string
	for _, m := range public {
		publicIDs = append(publicIDs, m.ID())
	}
	for _, m := range protected {
		protectedIDs = append(protectedIDs, m.ID())
	}
	if got := strings.Join(publicIDs, ","); got != "public" {
		t.Fatalf("public ids = %q, want %q", got, "public")
	}
	if got := strings.Join(protectedIDs, ","); got != "brand,typographysettings,fontfiles" {
		t.Fatalf("protected ids = %q", got)
	}
}

func TestModulesHaveUniquePrefixes(t *testing.T) {
	t.Parallel()

	all := append(DefaultPublicModules(Dependencies{}, ModuleResolvers{}), DefaultProtectedModules(Dependencies{}, ModuleResolvers{})...)
	seen := map[string]struct{}{}
	for _, m := range all {
		mount, err := m.Mount()
		if err != nil {
			t.Fatalf("module %q mount error = %v", m.ID(), err)
		}
		if mount.Prefix == "" {
			t.Fatalf("module %q prefix is empty", m.ID())
		}
		if _, ok := seen[mount.Prefix]; ok {
			t.Fatalf("duplicate mount prefix %q", mount.Prefix)
		}
		seen[mount.Prefix] = struct{}{}
	}
}

func TestProtectedModulesMountUnderApp(t *testing.T) {
	t.Parallel()

	for _, m := range DefaultProtectedModules(Dependencies{}, ModuleResolvers{}) {
		mount, err := m.Mount()
		if err != nil {
			t.Fatalf("module %q mount error = %v", m.ID(), err)
		}
		if !strings.HasPrefix(mount.Prefix, routepath.AppPrefix) {
			t.Fatalf("module %q prefix %q is outside %q", m.ID(), mount.Prefix, routepath.AppPrefix)
		}
	}
}

func TestFeatureModulesDoNotImportSiblingModules(t *testing.T) {
	t.Parallel()

	entries, err := filepath.Glob(filepath.Join("*", "*.go"))
	if err != nil {
		t.Fatalf("glob module files: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no module files found")
	}
	fset := token.NewFileSet()
	for _, file := range entries {
		parsed, err := parser.ParseFile(fset, file, nil, parser.ImportsOnly)
		if err != nil {
			t.Fatalf("parse imports for %s: %v", file, err)
		}
		for _, imp := range parsed.Imports {
			path := strings.Trim(imp.Path.Value, "\"")
			if strings.Contains(path, "/internal/services/web/modules/") {
				t.Fatalf("file %s imports sibling module path %q", file, path)
			}
		}
	}
}
