// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	statusWidth = 12 // Width for status text
)

// File statuses, shared with the batch operation.
const (
	StatusConverted = "converted"
	StatusUnchanged = "unchanged"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// 🎯 FileEntry describes one converted file for display
type FileEntry struct {
	Path     string // Source path
	Dest     string // Destination path
	Status   string // One of the Status constants
	Rewrites int    // Number of delimiter rewrites
	Err      error  // Set when Status is failed
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	entries []FileEntry
}

// 🏭 New creates a logger that prints file lines to console and structured
// records at or above level to the same writer
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: console}).With().Timestamp().Logger().Level(level)
	return NewWithZerolog(console, zlog)
}

// With returns a logger whose structured records carry key=value. Console
// output and recorded file entries are not shared with l.
func (l *Logger) With(key, value string) *Logger {
	return NewWithZerolog(l.console, l.zlog.With().Str(key, value).Logger())
}

// NewWithZerolog creates a logger that sends structured records to zlog.
func NewWithZerolog(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context, along with its zerolog logger
func NewContext(ctx context.Context, l *Logger) context.Context {
	ctx = l.zlog.WithContext(ctx)
	return context.WithValue(ctx, contextKey{}, l)
}

// Zerolog returns the structured logger.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zlog
}

// 📝 formatFile formats a file entry for display
func (l *Logger) formatFile(e FileEntry) string {
	var symbol rune
	var symbolColor color.Attribute
	switch e.Status {
	case StatusConverted:
		symbol = '⟳'
		symbolColor = color.FgBlue
	case StatusSkipped:
		symbol = '-'
		symbolColor = color.FgYellow
	case StatusFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	status := e.Status
	if e.Rewrites > 0 {
		status = fmt.Sprintf("%s [%d]", e.Status, e.Rewrites)
	}

	return fmt.Sprintf("%s%s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, e.Path),
		fmt.Sprintf("%-*s", statusWidth, status))
}

// 📝 LogFile logs a converted file
func (l *Logger) LogFile(ctx context.Context, e FileEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, e)

	fmt.Fprintln(l.console, l.formatFile(e))

	event := l.zlog.Info()
	if e.Err != nil {
		event = l.zlog.Error().Err(e.Err)
	}
	event.
		Str("file", e.Path).
		Str("dest", e.Dest).
		Str("status", e.Status).
		Int("rewrites", e.Rewrites).
		Msg("file conversion")
}

// 📊 Summary prints a table of every file logged so far
func (l *Logger) Summary(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data := pterm.TableData{{"File", "Status", "Rewrites", "Destination"}}
	counts := map[string]int{}
	for _, e := range l.entries {
		counts[e.Status]++
		data = append(data, []string{e.Path, e.Status, fmt.Sprintf("%d", e.Rewrites), e.Dest})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(l.console, table)

	l.zlog.Info().
		Int("files", len(l.entries)).
		Int(StatusConverted, counts[StatusConverted]).
		Int(StatusUnchanged, counts[StatusUnchanged]).
		Int(StatusSkipped, counts[StatusSkipped]).
		Int(StatusFailed, counts[StatusFailed]).
		Msg("batch complete")
	return nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("texbra")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Progress logs how many of total files are done
func (l *Logger) Progress(current, total int) {
	var percentage float64
	switch {
	case total > 0:
		percentage = float64(current) / float64(total) * 100
	case current > 0:
		percentage = 100
	}

	if current >= total {
		l.Success(fmt.Sprintf("Progress: %d/%d (%.0f%%)", current, total, percentage))
		return
	}
	l.Info(fmt.Sprintf("Progress: %d/%d (%.0f%%)", current, total, percentage))
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
