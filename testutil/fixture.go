package testutil

import (
	"testing"

	"golang.org/x/tools/txtar"
)

// Fixture is one parsed txtar test case: a Cursive0 source file plus
// any number of named expectation sections (e.g. "diagnostics",
// "ir/main") a test can compare its own output against.
type Fixture struct {
	Comment  string
	Source   string
	Sections map[string]string
}

// LoadFixture parses the txtar archive at path. By convention the
// first file is the Cursive0 source under test (named "input.cv0" or
// similar); every other file is an expectation section keyed by its
// name with any extension stripped.
func LoadFixture(t *testing.T, path string) Fixture {
	t.Helper()
	arc, err := txtar.ParseFile(path)
	if err != nil {
		t.Fatalf("parsing fixture %s: %v", path, err)
	}

	fx := Fixture{Comment: string(arc.Comment), Sections: make(map[string]string)}
	for i, f := range arc.Files {
		if i == 0 {
			fx.Source = string(f.Data)
			continue
		}
		fx.Sections[stripExt(f.Name)] = string(f.Data)
	}
	return fx
}

func stripExt(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i]
		}
		if name[i] == '/' {
			break
		}
	}
	return name
}
