package core_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// coreImports returns every import of the non-test files in pkg/core, keyed by file.
func coreImports(t *testing.T) map[string][]string {
	t.Helper()

	fset := token.NewFileSet()
	entries, err := os.ReadDir(".")
	if err != nil {
		t.Fatalf("Failed to read core directory: %v", err)
	}

	imports := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") || strings.HasSuffix(entry.Name(), "_test.go") {
			continue
		}

		f, err := parser.ParseFile(fset, filepath.Join(".", entry.Name()), nil, parser.ImportsOnly)
		if err != nil {
			t.Errorf("Failed to parse %s: %v", entry.Name(), err)
			continue
		}
		for _, imp := range f.Imports {
			imports[entry.Name()] = append(imports[entry.Name()], strings.Trim(imp.Path.Value, `"`))
		}
	}
	return imports
}

// TestCoreImportsOnly verifies pkg/core only imports the stdlib and its JSON codec.
func TestCoreImportsOnly(t *testing.T) {
	allowedExternal := map[string]bool{
		"github.com/goccy/go-json": true,
	}

	for file, paths := range coreImports(t) {
		for _, importPath := range paths {
			if !strings.Contains(importPath, ".") {
				continue
			}
			if !allowedExternal[importPath] {
				t.Errorf("%s imports forbidden package: %s", file, importPath)
			}
		}
	}
}

// TestCoreDoesNotImportInternal verifies pkg/core doesn't import any leapview package.
func TestCoreDoesNotImportInternal(t *testing.T) {
	for file, paths := range coreImports(t) {
		for _, importPath := range paths {
			if strings.Contains(importPath, "leapview/") {
				t.Errorf("%s imports %s (core must not depend on other leapview packages)", file, importPath)
			}
		}
	}
}
