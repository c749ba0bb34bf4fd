package logger

import "sync"

// Entry is one captured log record.
type Entry struct {
	Level   string
	Message string
	Fields  []Field
}

// Capture implements Logger and records entries for test assertions.
type Capture struct {
	mu      sync.Mutex
	entries []Entry
}

// NewCapture creates a recording logger.
func NewCapture() *Capture {
	return &Capture{}
}

func (c *Capture) Debug(msg string, fields ...Field) { c.record("debug", msg, fields) }
func (c *Capture) Info(msg string, fields ...Field)  { c.record("info", msg, fields) }
func (c *Capture) Warn(msg string, fields ...Field)  { c.record("warn", msg, fields) }
func (c *Capture) Error(msg string, fields ...Field) { c.record("error", msg, fields) }

func (c *Capture) record(level, msg string, fields []Field) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, Entry{Level: level, Message: msg, Fields: fields})
}

// Entries returns a copy of everything recorded so far.
func (c *Capture) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Count reports how many entries were recorded at the given level.
func (c *Capture) Count(level string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}
