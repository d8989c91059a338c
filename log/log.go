// Package log provides a minimal key-value logger interface for the engine.
package log

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Root is the default logger used when no other logger is configured.
var Root Logger = New(os.Stderr)

// Logger is the logger interface. The variadic arguments are key value pairs.
// The key must be a string and the value should have a meaningful string
// representation.
type Logger interface {
	Debug(string, ...interface{})
	Error(string, ...interface{})
	Crit(string, ...interface{})
	With(...interface{}) Logger
}

// New returns a logger writing zerolog console lines to w.
func New(w io.Writer) Logger {
	z := zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	return &zlog{z: z}
}

type zlog struct {
	z zerolog.Logger
}

func (l *zlog) Debug(m string, tags ...interface{}) { emit(l.z.Debug(), m, tags) }
func (l *zlog) Error(m string, tags ...interface{}) { emit(l.z.Error(), m, tags) }
func (l *zlog) Crit(m string, tags ...interface{})  { emit(l.z.Fatal(), m, tags) }

func (l *zlog) With(tags ...interface{}) Logger {
	c := l.z.With()
	for i := 0; i+1 < len(tags); i += 2 {
		c = c.Interface(key(tags[i]), tags[i+1])
	}
	return &zlog{z: c.Logger()}
}

func emit(ev *zerolog.Event, msg string, tags []interface{}) {
	for i := 0; i+1 < len(tags); i += 2 {
		ev = ev.Interface(key(tags[i]), tags[i+1])
	}
	ev.Msg(msg)
}

func key(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
