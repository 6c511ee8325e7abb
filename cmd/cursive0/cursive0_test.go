package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempSource(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.cv0")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigDefaultsWithNoPath(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, 128, cfg.MonomorphizationDepth)
}

func TestReadSourceReturnsFileContents(t *testing.T) {
	path := writeTempSource(t, "procedure f() -> i32 {\n  result 0\n}\n")
	code, err := readSource(path)
	require.NoError(t, err)
	require.Contains(t, code, "procedure f")
}

func TestReadSourceMissingFile(t *testing.T) {
	_, err := readSource(filepath.Join(t.TempDir(), "missing.cv0"))
	require.Error(t, err)
}

func TestParseCmdSucceedsOnWellFormedSource(t *testing.T) {
	path := writeTempSource(t, "procedure f() -> i32 {\n  result 0\n}\n")

	cmd := newParseCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "--dump-ast"})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "1 top-level items")
}

func TestParseCmdReportsSyntaxErrors(t *testing.T) {
	path := writeTempSource(t, "procedure {{{\n")

	cmd := newParseCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	err := cmd.Execute()
	require.Error(t, err)
}

func TestCheckCmdSucceedsOnWellTypedSource(t *testing.T) {
	path := writeTempSource(t, "procedure f() -> i32 {\n  result 0\n}\n")

	cmd := newCheckCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "ok")
}

func TestCheckCmdReportsTypeErrors(t *testing.T) {
	path := writeTempSource(t, "procedure f() -> i32 {\n  result true\n}\n")

	cmd := newCheckCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	err := cmd.Execute()
	require.Error(t, err)
	require.Contains(t, out.String(), "E-TYP")
}

func TestCheckCmdPrintsTimingsWhenRequested(t *testing.T) {
	path := writeTempSource(t, "procedure f() -> i32 {\n  result 0\n}\n")

	cmd := newCheckCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "--timings"})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "lex+parse")
	require.Contains(t, out.String(), "lower")
}

func TestCheckCmdLoadsConfigFile(t *testing.T) {
	srcPath := writeTempSource(t, "procedure f() -> i32 {\n  result 0\n}\n")
	cfgPath := filepath.Join(filepath.Dir(srcPath), "cursive0.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("monomorphization_depth: 4\n"), 0644))

	cmd := newCheckCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{srcPath, "--config", cfgPath})
	require.NoError(t, cmd.Execute())
}

func TestLowerCmdPrintsLoweredProcedures(t *testing.T) {
	path := writeTempSource(t, "procedure f() -> i32 {\n  result 0\n}\n")

	cmd := newLowerCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "f ->")
}

func TestLowerCmdSkipsLoweringOnFrontEndError(t *testing.T) {
	path := writeTempSource(t, "procedure f() -> i32 {\n  result true\n}\n")

	cmd := newLowerCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	err := cmd.Execute()
	require.Error(t, err)
}
