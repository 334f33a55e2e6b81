package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// EnableDebug shows DocumentLoaded and DocumentUnchanged events.
func EnableDebug() {
	pterm.EnableDebugMessages()
}

// 🎨 DocumentEventType is what happened to a document during a run
type DocumentEventType int

const (
	DocumentLoaded DocumentEventType = iota
	DocumentSaved
	DocumentUnchanged
	DocumentBackedUp
	DocumentDryRun
	DocumentError
)

// 🖼️ DocumentEvent is one user-facing document event
type DocumentEvent struct {
	Type        DocumentEventType
	Path        string
	Description string
	Error       error
}

// 📢 UserLogger provides user-friendly feedback about documents as they are
// patched
type UserLogger struct {
	log zerolog.Logger
	out io.Writer
	// mu keeps events from concurrent documents on separate lines
	mu sync.Mutex
}

// 🎯 NewUserLoggerTo creates a user logger writing to out.
func NewUserLoggerTo(ctx context.Context, out io.Writer) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
		out: out,
	}
}

// 📝 LogDocument logs a document event with appropriate emoji and formatting
func (u *UserLogger) LogDocument(ev DocumentEvent) {
	var prefix, action string
	var printer *pterm.PrefixPrinter
	switch ev.Type {
	case DocumentLoaded:
		prefix, action = "📄", "Loaded"
		printer = pterm.Debug.WithPrefix(pterm.Prefix{Text: prefix})
	case DocumentSaved:
		prefix, action = "📝", "Saved"
		printer = pterm.Success.WithPrefix(pterm.Prefix{Text: prefix})
	case DocumentUnchanged:
		prefix, action = "⏭️", "Unchanged"
		printer = pterm.Debug.WithPrefix(pterm.Prefix{Text: prefix})
	case DocumentBackedUp:
		prefix, action = "💾", "Backed up"
		printer = pterm.Info.WithPrefix(pterm.Prefix{Text: prefix})
	case DocumentDryRun:
		prefix, action = "🔍", "Would save"
		printer = pterm.Info.WithPrefix(pterm.Prefix{Text: prefix})
	default:
		prefix, action = "❌", "Error"
		printer = pterm.Error.WithPrefix(pterm.Prefix{Text: prefix})
	}
	printer = printer.WithWriter(u.out)

	u.mu.Lock()
	defer u.mu.Unlock()

	msg := fmt.Sprintf("%s %s", action, ev.Path)
	if ev.Description != "" {
		msg += fmt.Sprintf(" (%s)", ev.Description)
	}

	printer.Println(msg)
	if ev.Error != nil {
		pterm.Error.WithWriter(u.out).Println(ev.Error)
		u.log.Error().Err(ev.Error).Str("path", ev.Path).Msg(msg)
		return
	}
	u.log.Debug().Str("path", ev.Path).Msg(msg)
}

// 🔍 LogValidation logs plan validation results
func (u *UserLogger) LogValidation(valid bool, description string, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	switch {
	case valid:
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).WithWriter(u.out).Println(description)
		u.log.Info().Msg(description)
	case err != nil:
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).WithWriter(u.out).Println(description)
		pterm.Error.WithWriter(u.out).Println(err)
		u.log.Error().Err(err).Msg(description)
	default:
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).WithWriter(u.out).Println(description)
		u.log.Warn().Msg(description)
	}
}
