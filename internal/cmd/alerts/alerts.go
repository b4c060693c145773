// Package alerts provides the status notices the CLI prints next to its
// primary output.
package alerts

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/agentstation/smactrace/internal/cmd/emoji"
	"github.com/agentstation/smactrace/pkg/reconcile"
)

// Level represents the severity of an alert.
type Level int

const (
	// LevelError indicates a failure.
	LevelError Level = iota
	// LevelWarning indicates a skipped file or a recoverable issue.
	LevelWarning
	// LevelInfo indicates general information.
	LevelInfo
	// LevelSuccess indicates a completed operation.
	LevelSuccess
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelSuccess:
		return "success"
	default:
		return "info"
	}
}

// Icon returns the symbol printed before the message.
func (l Level) Icon() string {
	switch l {
	case LevelError:
		return emoji.Error
	case LevelWarning:
		return emoji.Warning
	case LevelSuccess:
		return emoji.Success
	default:
		return emoji.Info
	}
}

func (l Level) color() *color.Color {
	switch l {
	case LevelError:
		return color.New(color.FgRed, color.Bold)
	case LevelWarning:
		return color.New(color.FgYellow)
	case LevelSuccess:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgCyan)
	}
}

// Alert represents a status notification.
type Alert struct {
	Level   Level
	Message string
	Details []string
	Err     error
}

// New creates a new alert with the given level and message.
func New(level Level, message string) *Alert {
	return &Alert{Level: level, Message: message}
}

// NewWarning creates a new warning alert.
func NewWarning(message string) *Alert {
	return New(LevelWarning, message)
}

// NewSuccess creates a new success alert.
func NewSuccess(message string) *Alert {
	return New(LevelSuccess, message)
}

// NewInfo creates a new info alert.
func NewInfo(message string) *Alert {
	return New(LevelInfo, message)
}

// WithError adds an underlying error to the alert.
func (a *Alert) WithError(err error) *Alert {
	a.Err = err
	return a
}

// WithDetails adds indented detail lines.
func (a *Alert) WithDetails(details ...string) *Alert {
	a.Details = append(a.Details, details...)
	return a
}

// String returns the alert without color.
func (a *Alert) String() string {
	message := fmt.Sprintf("%s %s", a.Level.Icon(), a.Message)
	if a.Err != nil {
		message += fmt.Sprintf(": %v", a.Err)
	}
	return message
}

// Writer prints alerts to a stream.
type Writer struct {
	w        io.Writer
	useColor bool
	quiet    bool
}

// NewWriter creates a Writer. Quiet writers drop info and success alerts.
func NewWriter(w io.Writer, useColor, quiet bool) *Writer {
	return &Writer{w: w, useColor: useColor, quiet: quiet}
}

// Write prints one alert and its details.
func (wr *Writer) Write(a *Alert) error {
	if wr.quiet && a.Level > LevelWarning {
		return nil
	}
	line := a.String()
	if wr.useColor {
		c := a.Level.color()
		c.EnableColor()
		line = c.Sprint(line)
	}
	if _, err := fmt.Fprintln(wr.w, line); err != nil {
		return err
	}
	for _, d := range a.Details {
		if _, err := fmt.Fprintf(wr.w, "   %s\n", d); err != nil {
			return err
		}
	}
	return nil
}

// FromResult summarizes a reconciliation: one alert for the result,
// followed by one per skipped file and one per warning.
func FromResult(res *reconcile.Result) []*Alert {
	level := LevelSuccess
	if res.HasSkips() || res.HasWarnings() {
		level = LevelWarning
	}
	out := []*Alert{New(level, res.Summary())}
	for _, s := range res.Skips {
		out = append(out, NewWarning("skipped "+s.Label).WithDetails(s.Path, s.Reason))
	}
	for _, w := range res.Warnings {
		out = append(out, NewWarning(w))
	}
	return out
}

// WriteResult prints the alerts FromResult builds.
func (wr *Writer) WriteResult(res *reconcile.Result) error {
	for _, a := range FromResult(res) {
		if err := wr.Write(a); err != nil {
			return err
		}
	}
	return nil
}
