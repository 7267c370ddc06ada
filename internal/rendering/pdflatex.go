package rendering

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// DefaultTimeout bounds a single engine run when PDFLatex.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Renderer turns LaTeX source into a binary document.
type Renderer interface {
	Render(ctx context.Context, source string) ([]byte, error)
}

// PDFLatex renders with an external pdflatex-compatible engine. Each call
// runs in its own temporary directory, so concurrent renders never share
// files.
type PDFLatex struct {
	Binary  string        // engine executable, "pdflatex" when empty
	Timeout time.Duration // per-render limit
	WorkDir string        // parent of the per-render temp dirs, os.TempDir() when empty
}

func (p *PDFLatex) Render(ctx context.Context, source string) ([]byte, error) {
	binary := p.Binary
	if binary == "" {
		binary = "pdflatex"
	}
	bin, err := exec.LookPath(binary)
	if err != nil {
		return nil, &RenderError{
			Code:    CodeEngineNotFound,
			Message: fmt.Sprintf("%s not found in PATH", binary),
			Cause:   err,
		}
	}

	dir, err := os.MkdirTemp(p.WorkDir, "latex-compile-*")
	if err != nil {
		return nil, &RenderError{Code: CodeIO, Message: "failed to create working directory", Cause: err}
	}
	defer func() { _ = os.RemoveAll(dir) }()

	texPath := filepath.Join(dir, "resume.tex")
	if err := os.WriteFile(texPath, []byte(source), 0o600); err != nil {
		return nil, &RenderError{Code: CodeIO, Message: "failed to write LaTeX source", Cause: err}
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, bin,
		"-interaction=nonstopmode",
		"-halt-on-error",
		"-output-directory", dir,
		texPath,
	)
	cmd.Dir = dir
	// Grandchildren can hold the output pipes open after the engine is killed.
	cmd.WaitDelay = time.Second
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	runErr := cmd.Run()
	log := out.String()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, &RenderError{
			Code:    CodeEngineTimeout,
			Message: fmt.Sprintf("engine did not finish within %s", timeout),
			Log:     log,
			Cause:   runCtx.Err(),
		}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if runErr != nil {
		return nil, &RenderError{Code: CodeEngineFailed, Message: log, Log: log, Cause: runErr}
	}

	pdf, err := os.ReadFile(filepath.Join(dir, "resume.pdf"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, &RenderError{Code: CodeEngineFailed, Message: "engine produced no PDF: " + log, Log: log}
	}
	if err != nil {
		return nil, &RenderError{Code: CodeIO, Message: "failed to read PDF", Log: log, Cause: err}
	}
	return pdf, nil
}
