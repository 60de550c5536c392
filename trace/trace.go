// Package trace writes one human-readable file per completion call.
//
// Files are named NNNNNN.txt in the trace directory, numbered after the
// highest existing index, so traces from several runs sort in call order.
// Each file is created, written and closed within Write; nothing is held
// open between calls.
package trace

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/randalmurphal/ltmkit/provider"
)

// Writer writes call traces into a directory.
// A Writer is safe for concurrent use.
type Writer struct {
	dir    string
	logger *slog.Logger

	mu sync.Mutex
}

// New creates the directory if needed and returns a Writer for it.
func New(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create trace dir: %w", err)
	}
	return &Writer{dir: dir, logger: slog.Default().With("component", "trace")}, nil
}

// Dir returns the trace directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write records one call and returns the path of the file written.
// A nil resp (failed call) is recorded with an empty response section.
func (w *Writer) Write(req provider.Request, resp *provider.Response) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	next, err := w.nextIndex()
	if err != nil {
		return "", err
	}

	for {
		path := filepath.Join(w.dir, fmt.Sprintf("%06d.txt", next))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			// another process took this index
			next++
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create trace file: %w", err)
		}

		_, werr := f.WriteString(Format(req, resp))
		cerr := f.Close()
		if err := errors.Join(werr, cerr); err != nil {
			return "", fmt.Errorf("write trace file: %w", err)
		}
		w.logger.Debug("trace written", "path", path)
		return path, nil
	}
}

// nextIndex returns one past the highest NNNNNN.txt index in the directory.
func (w *Writer) nextIndex() (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("read trace dir: %w", err)
	}
	next := 0
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".txt")
		if !ok || e.IsDir() {
			continue
		}
		if n, err := strconv.Atoi(name); err == nil && n >= next {
			next = n + 1
		}
	}
	return next, nil
}

// Format renders a call the way Write stores it:
//
//	LLM temperature: 0.7
//	--- USER
//	hello
//	--- Response:
//	hi there
func Format(req provider.Request, resp *provider.Response) string {
	var b strings.Builder

	temp := "default"
	if req.Temperature != nil {
		temp = strconv.FormatFloat(*req.Temperature, 'f', -1, 64)
	}
	fmt.Fprintf(&b, "LLM temperature: %s\n", temp)
	if req.Model != "" {
		fmt.Fprintf(&b, "Model: %s\n", req.Model)
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "--- %s\n", strings.ToUpper(string(m.Role)))
		if m.Content != "" {
			b.WriteString(m.Content)
			b.WriteString("\n")
		}
		writeCalls(&b, m.ToolCalls)
	}

	b.WriteString("--- Response:\n")
	if resp != nil {
		b.WriteString(resp.Content)
		if resp.Content != "" && len(resp.ToolCalls) > 0 {
			b.WriteString("\n")
		}
		writeCalls(&b, resp.ToolCalls)
	}
	return b.String()
}

func writeCalls(b *strings.Builder, calls []provider.ToolCall) {
	for _, c := range calls {
		fmt.Fprintf(b, "[tool call %s] %s(%s)\n", c.ID, c.Name, c.Arguments)
	}
}
