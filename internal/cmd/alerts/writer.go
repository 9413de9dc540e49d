package alerts

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"

	"github.com/coasterranker/coastermap/internal/cmd/output"
)

// Writer writes alerts to a destination.
type Writer interface {
	WriteAlert(alert *Alert) error
}

// WriterFunc is an adapter to allow functions to be used as Writers.
type WriterFunc func(*Alert) error

// WriteAlert calls the function.
func (f WriterFunc) WriteAlert(alert *Alert) error {
	return f(alert)
}

// DiscardWriter is a Writer that discards all alerts.
var DiscardWriter Writer = WriterFunc(func(*Alert) error { return nil })

// FormatWriter writes alerts matching the command's output format: one
// JSON object per line for json, a YAML document for yaml, and an icon line
// otherwise.
type FormatWriter struct {
	writer   io.Writer
	format   output.Format
	useColor bool
}

// NewFormatWriter creates a FormatWriter. Color is used only when w is a
// terminal and NO_COLOR is unset.
func NewFormatWriter(w io.Writer, format string) *FormatWriter {
	return &FormatWriter{
		writer:   w,
		format:   output.DetectFormat(format),
		useColor: isTerminal(w) && os.Getenv("NO_COLOR") == "",
	}
}

// WriteAlert writes an alert in the configured format.
func (fw *FormatWriter) WriteAlert(alert *Alert) error {
	switch fw.format {
	case output.FormatJSON:
		return json.NewEncoder(fw.writer).Encode(toData(alert))
	case output.FormatYAML:
		b, err := yaml.Marshal(toData(alert))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(fw.writer, "---\n%s", b)
		return err
	default:
		return fw.writeText(alert)
	}
}

type alertData struct {
	Level     string   `json:"level" yaml:"level"`
	Message   string   `json:"message" yaml:"message"`
	Details   []string `json:"details,omitempty" yaml:"details,omitempty"`
	Error     string   `json:"error,omitempty" yaml:"error,omitempty"`
	Timestamp string   `json:"timestamp" yaml:"timestamp"`
}

func toData(alert *Alert) alertData {
	data := alertData{
		Level:     alert.Level.String(),
		Message:   alert.Message,
		Details:   alert.Details,
		Timestamp: alert.Timestamp.UTC().Format(time.RFC3339),
	}
	if alert.Err != nil {
		data.Error = alert.Err.Error()
	}
	return data
}

func (fw *FormatWriter) writeText(alert *Alert) error {
	line := alert.String()
	if fw.useColor {
		line = alert.Level.Color() + line + resetColor
	}
	if _, err := fmt.Fprintln(fw.writer, line); err != nil {
		return err
	}
	for _, detail := range alert.Details {
		if _, err := fmt.Fprintf(fw.writer, "   %s\n", detail); err != nil {
			return err
		}
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
