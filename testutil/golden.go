// Package testutil provides golden-file and fixture-loading helpers
// for the compiler's package tests (no test file imports it at
// present), adapted from the
// teacher's own testutil package to this repo's plain-text outputs
// (diagnostic listings, IR dumps) rather than ailang's JSON-structured
// golden files.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// UpdateGoldens controls whether CompareGolden rewrites the golden file
// instead of comparing against it, mirroring the teacher's own
// UPDATE_GOLDENS convention.
var UpdateGoldens = os.Getenv("UPDATE_GOLDENS") == "true"

// GoldenPath returns the on-disk path for a golden fixture, rooted at
// testdata/<feature>/<name>.golden the way the teacher's
// GetGoldenPath rooted JSON goldens at testdata/<feature>/<name>.golden.json.
func GoldenPath(feature, name string) string {
	return filepath.Join("testdata", feature, name+".golden")
}

// CompareGolden compares actual (already rendered to its final text
// form — a diagnostic listing, an `internal/ir.Sprint` dump, a
// `internal/symbol.Mangle` output) against the golden file for
// feature/name, or rewrites it when UpdateGoldens is set.
func CompareGolden(t *testing.T, feature, name, actual string) {
	t.Helper()
	path := GoldenPath(feature, name)

	if UpdateGoldens {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating golden directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0o644); err != nil {
			t.Fatalf("writing golden file: %v", err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file %s does not exist; rerun with UPDATE_GOLDENS=true", path)
		}
		t.Fatalf("reading golden file: %v", err)
	}
	if diff := cmp.Diff(string(want), actual); diff != "" {
		t.Errorf("golden mismatch for %s/%s (-want +got):\n%s", feature, name, diff)
	}
}
