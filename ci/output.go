package ci

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bitrise-io/bitrise-plugins-build-summary/common"
)

const (
	// OutputName is the step output the CI reads the summary into
	OutputName = "summary"
	// Delimiter closes the multiline output block
	Delimiter = "EOF"
)

var ErrAlreadyEmitted = errors.New("summary has already been emitted")

// Emitter writes the single summary block of an invocation. The CI step redirects
// the writer (stdout) into its output file, so nothing else may carry the block.
type Emitter struct {
	w       io.Writer
	emitted bool
}

// NewEmitter creates an emitter writing to w
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// FormatRecord renders body as a delimited output block. Lines that equal the
// delimiter are escaped so the block can't be closed early.
func FormatRecord(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		body = common.NoSummary
	}

	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == Delimiter {
			lines[i] = Delimiter + " (escaped)"
		}
	}

	return OutputName + "<<" + Delimiter + "\n" + strings.Join(lines, "\n") + "\n" + Delimiter + "\n"
}

// Emit writes the block. Only the first call writes anything.
func (e *Emitter) Emit(body string) error {
	if e.emitted {
		return ErrAlreadyEmitted
	}
	e.emitted = true

	record := FormatRecord(body)
	if _, err := io.WriteString(e.w, record); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

