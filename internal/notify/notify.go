// Package notify delivers transient user-facing messages: short status
// messages with a severity, and celebrations for level-ups and achievements.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/musclemap/internal/logging"
)

type Severity string

const (
	Success Severity = "success"
	Info    Severity = "info"
	Warning Severity = "warning"
	Error   Severity = "error"
)

type Kind string

const (
	LevelUp     Kind = "levelup"
	Achievement Kind = "achievement"
)

// Message is a transient status line.
type Message struct {
	Text     string
	Severity Severity
}

// Celebration is a richer event shown for level-ups and unlocks.
type Celebration struct {
	Title       string
	Description string
	Kind        Kind
}

// Notifier receives messages fire-and-forget.
type Notifier interface {
	Notify(m Message)
	Celebrate(c Celebration)
}

var tags = map[Severity]string{
	Success: "[ok]",
	Info:    "[i]",
	Warning: "[!]",
	Error:   "[x]",
}

// Console writes notifications as text lines.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Notify(m Message) {
	tag, ok := tags[m.Severity]
	if !ok {
		tag = tags[Info]
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%s %s\n", tag, m.Text)
}

func (c *Console) Celebrate(e Celebration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch e.Kind {
	case LevelUp:
		fmt.Fprintf(c.w, "*** %s *** %s\n", e.Title, e.Description)
	default:
		fmt.Fprintf(c.w, "*** Achievement unlocked: %s *** %s\n", e.Title, e.Description)
	}
}

// Log routes notifications to a structured logger.
type Log struct {
	log logging.Logger
}

func NewLog(l logging.Logger) *Log {
	return &Log{log: l}
}

func (l *Log) Notify(m Message) {
	ctx := context.Background()
	switch m.Severity {
	case Error:
		l.log.Error(ctx, m.Text, "severity", m.Severity)
	case Warning:
		l.log.Warn(ctx, m.Text, "severity", m.Severity)
	default:
		l.log.Info(ctx, m.Text, "severity", m.Severity)
	}
}

func (l *Log) Celebrate(c Celebration) {
	l.log.Info(context.Background(), c.Title, "kind", c.Kind, "description", c.Description)
}

// Multi fans out to every notifier.
type Multi []Notifier

func (m Multi) Notify(msg Message) {
	for _, n := range m {
		n.Notify(msg)
	}
}

func (m Multi) Celebrate(c Celebration) {
	for _, n := range m {
		n.Celebrate(c)
	}
}

// Nop drops everything.
type Nop struct{}

func (Nop) Notify(Message) {}
func (Nop) Celebrate(Celebration) {}

// Recorder keeps everything it receives. Safe for concurrent use.
type Recorder struct {
	mu           sync.Mutex
	messages     []Message
	celebrations []Celebration
}

func (r *Recorder) Notify(m Message) {
	r.mu.Lock()
	r.messages = append(r.messages, m)
	r.mu.Unlock()
}

func (r *Recorder) Celebrate(c Celebration) {
	r.mu.Lock()
	r.celebrations = append(r.celebrations, c)
	r.mu.Unlock()
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Celebrations returns a copy of the recorded celebrations.
func (r *Recorder) Celebrations() []Celebration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Celebration(nil), r.celebrations...)
}

// Count returns how many messages with severity s were recorded.
func (r *Recorder) Count(s Severity) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.messages {
		if m.Severity == s {
			n++
		}
	}
	return n
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.messages = nil
	r.celebrations = nil
	r.mu.Unlock()
}
