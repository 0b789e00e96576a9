// Package logger es el logger estructurado del servicio y del CLI: una línea
// por entrada, en texto key=value o JSON.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
	off
)

var levelNames = map[Level]string{
	Debug: "debug",
	Info:  "info",
	Warn:  "warn",
	Error: "error",
}

// ParseLevel acepta debug|info|warn|warning|error; cualquier otra cosa es info.
func ParseLevel(s string) Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return Warn
	}
	for lvl, name := range levelNames {
		if name == s {
			return lvl
		}
	}
	return Info
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "info"
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

type Logger interface {
	With(fields map[string]any) Logger

	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

type Options struct {
	Level  Level
	Format Format
	App    string

	// Output por defecto os.Stdout. El CLI usa os.Stderr para no mezclar con su salida.
	Output io.Writer

	// Clock para el campo ts; nil => time.Now.
	Clock func() time.Time
}

const DefaultApp = "zoo-keeper"

// sink es lo que comparten un logger y todos sus With: el writer y su lock.
type sink struct {
	mu     sync.Mutex
	out    io.Writer
	format Format
	clock  func() time.Time
}

type lineLogger struct {
	sink  *sink
	level Level
	base  map[string]any
}

func New(opts Options) Logger {
	s := &sink{out: opts.Output, format: opts.Format, clock: opts.Clock}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.format == "" {
		s.format = FormatText
	}
	if s.clock == nil {
		s.clock = time.Now
	}

	base := map[string]any{}
	if app := strings.TrimSpace(opts.App); app != "" {
		base["app"] = app
	}
	return &lineLogger{sink: s, level: opts.Level, base: base}
}

// NewFromEnv lee LOG_LEVEL, LOG_FORMAT y APP_NAME.
func NewFromEnv() Logger {
	app := strings.TrimSpace(os.Getenv("APP_NAME"))
	if app == "" {
		app = DefaultApp
	}
	return New(Options{
		Level:  ParseLevel(os.Getenv("LOG_LEVEL")),
		Format: ParseFormat(os.Getenv("LOG_FORMAT")),
		App:    app,
	})
}

// Nop descarta todo. Default de los servicios cuando no se inyecta logger.
func Nop() Logger {
	return New(Options{Level: off, Output: io.Discard})
}

func (l *lineLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	return &lineLogger{sink: l.sink, level: l.level, base: merge(l.base, fields)}
}

func (l *lineLogger) Debug(msg string, fields map[string]any) { l.write(Debug, msg, fields) }
func (l *lineLogger) Info(msg string, fields map[string]any)  { l.write(Info, msg, fields) }
func (l *lineLogger) Warn(msg string, fields map[string]any)  { l.write(Warn, msg, fields) }
func (l *lineLogger) Error(msg string, fields map[string]any) { l.write(Error, msg, fields) }

func (l *lineLogger) write(lvl Level, msg string, fields map[string]any) {
	if lvl < l.level {
		return
	}

	entry := merge(l.base, fields)
	entry["ts"] = l.sink.clock().UTC().Format(time.RFC3339Nano)
	entry["level"] = lvl.String()
	entry["msg"] = msg

	var line string
	if l.sink.format == FormatJSON {
		b, err := json.Marshal(entry)
		if err != nil {
			b, _ = json.Marshal(map[string]any{"level": "error", "msg": "unencodable log entry", "error": err.Error()})
		}
		line = string(b)
	} else {
		line = formatText(entry)
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	_, _ = io.WriteString(l.sink.out, line+"\n")
}

// merge copia a y pisa con b. Las keys vacías se descartan.
func merge(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b)+3)
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if strings.TrimSpace(k) == "" {
			continue
		}
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		out[k] = v
	}
	return out
}

// formatText ordena las keys para que la salida sea estable.
func formatText(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		v := fmt.Sprint(m[k])
		if strings.ContainsAny(v, " \t\"") {
			v = fmt.Sprintf("%q", v)
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v)
	}
	return b.String()
}
