// Package export renders finished answers as markdown documents and
// optionally persists them to disk for later reference.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fusegraph/backend/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Document is a fully rendered answer ready for delivery.
type Document struct {
	Question string
	Answer   string

	// Sources lists citation labels in the order they were presented to
	// the model, so bracketed indices in the answer line up.
	Sources []string
}

// Markdown renders the document as a markdown string. Sources are
// appended as a numbered section when present.
func (d Document) Markdown() string {
	var sb strings.Builder

	if d.Question != "" {
		sb.WriteString("# ")
		sb.WriteString(strings.TrimSpace(d.Question))
		sb.WriteString("\n\n")
	}
	sb.WriteString(strings.TrimSpace(d.Answer))
	sb.WriteString("\n")

	if len(d.Sources) > 0 {
		sb.WriteString("\n## Sources\n\n")
		for i, src := range d.Sources {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, src))
		}
	}

	return sb.String()
}

// WriteFile persists the rendered markdown under dir and returns the
// path of the created file. The directory is created when missing. An
// empty dir disables export and returns an empty path without error.
func WriteFile(dir string, doc Document) (string, error) {
	if dir == "" {
		return "", nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	suffix, err := gonanoid.New(8)
	if err != nil {
		return "", fmt.Errorf("failed to generate export filename: %w", err)
	}
	name := fmt.Sprintf("answer_%s_%s.md", time.Now().UTC().Format("20060102T150405"), suffix)
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, []byte(doc.Markdown()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	logger.Debug("[Export] Answer exported", "path", path)
	return path, nil
}
