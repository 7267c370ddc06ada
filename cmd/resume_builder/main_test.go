package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command in-process with a clean flag state and no
// database configured.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("RB_DATABASE_URL", "")
	t.Setenv("REDIS_ADDR", "")
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// resetFlags restores defaults so one test's flags never leak into the next.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestCompileCommand_FromFile(t *testing.T) {
	stdout, _, err := execute(t, "compile", "--file", "testdata/resume.json")
	require.NoError(t, err)

	assert.Contains(t, stdout, `\begin{document}`)
	assert.Contains(t, stdout, "Engineer at Acme")
	assert.Contains(t, stdout, "Cut infra costs by 40\\%")
	assert.NotContains(t, stdout, "Mentored two engineers", "excluded sub-item")
	assert.NotContains(t, stdout, "Chess", "disabled section")
}

func TestCompileCommand_WritesOutFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "resume.tex")
	stdout, _, err := execute(t, "compile", "--file", "testdata/resume.json", "--out", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `\end{document}`)
}

func TestCompileCommand_SourceFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{"no source", []string{"compile"}, "must provide either --file or --resume-id"},
		{"both sources", []string{"compile", "--file", "testdata/resume.json", "--resume-id", "x"}, "cannot use --file with --resume-id"},
		{"bad id", []string{"compile", "--resume-id", "not-a-uuid"}, "invalid resume id"},
		{"db required", []string{"compile", "--resume-id", "7f0c5a3e-52d4-4c55-9a43-3d5c3c7f1b11"}, "DATABASE_URL"},
		{"missing file", []string{"compile", "--file", "testdata/nope.json"}, "failed to read resume file"},
		{"missing template", []string{"compile", "--file", "testdata/resume.json", "--template", "testdata/nope.tex"}, "template file not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestRenderCommand_FakeEngine(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script engines need a POSIX shell")
	}
	engine := filepath.Join(t.TempDir(), "fake-pdflatex")
	script := "#!/bin/sh\nprintf '%%PDF-1.4 fake' > \"$4/resume.pdf\"\n"
	require.NoError(t, os.WriteFile(engine, []byte(script), 0o755))
	t.Setenv("RB_RENDER_ENGINE", engine)

	out := filepath.Join(t.TempDir(), "resume.pdf")
	_, stderr, err := execute(t, "render", "--file", "testdata/resume.json", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Wrote 13 bytes")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
}

func TestRenderCommand_EngineMissing(t *testing.T) {
	t.Setenv("RB_RENDER_ENGINE", "definitely-not-a-tex-engine")
	_, _, err := execute(t, "render", "--file", "testdata/resume.json", "--out", filepath.Join(t.TempDir(), "x.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine_not_found")
}

func TestAnalyzeCommand(t *testing.T) {
	stdout, _, err := execute(t, "analyze", "--file", "testdata/resume.json", "--job", "testdata/backend.html", "--outline")
	require.NoError(t, err)

	assert.Contains(t, stdout, "RESUME OUTLINE")
	assert.Contains(t, stdout, "KEYWORD MATCH")
	assert.Contains(t, stdout, "Posting:  backend")
	assert.Contains(t, stdout, "redis")
	assert.NotContains(t, stdout, "track()", "script content never becomes keywords")
}

func TestAnalyzeCommand_RequiresJob(t *testing.T) {
	_, _, err := execute(t, "analyze", "--file", "testdata/resume.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "job" not set`)
}

func TestImportCommand_RequiresDatabase(t *testing.T) {
	_, _, err := execute(t, "import", "--file", "testdata/resume.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestReorderCommand_ValidatesBeforeConnecting(t *testing.T) {
	parent := "7f0c5a3e-52d4-4c55-9a43-3d5c3c7f1b11"
	tests := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{"bad kind", []string{"reorder", "--kind", "subitem", "--parent", parent, "--ids", parent}, "unknown parent kind"},
		{"bad parent", []string{"reorder", "--kind", "resume", "--parent", "x", "--ids", parent}, "invalid parent id"},
		{"bad child", []string{"reorder", "--kind", "section", "--parent", parent, "--ids", parent + ",nope"}, "invalid id at position 1"},
		{"missing ids", []string{"reorder", "--kind", "item", "--parent", parent}, "at least one of the flags in the group [ids normalize] is required"},
		{"ids and normalize", []string{"reorder", "--kind", "item", "--parent", parent, "--ids", parent, "--normalize"}, "were all set"},
		{"normalize needs db", []string{"reorder", "--kind", "item", "--parent", parent, "--normalize"}, "DATABASE_URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"7f0c5a3e-52d4-4c55-9a43-3d5c3c7f1b11"})
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	ids, err = parseIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestReadPostings(t *testing.T) {
	postings, err := readPostings([]string{"testdata/backend.html"})
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, "backend", postings[0].Title)
	assert.Contains(t, postings[0].Description, "Kubernetes")
	assert.NotContains(t, postings[0].Description, "<p>")

	_, err = readPostings([]string{"testdata/missing.txt"})
	assert.ErrorContains(t, err, "file not found")
}
