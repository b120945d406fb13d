// Package log configures the apex/log package logger for the rawrstash
// command.
package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// EnvLevel names the environment variable holding the log level.
const EnvLevel = "RAWRSTASH_LOG"

// InitLogger installs a compact handler on stderr and sets the level from
// RAWRSTASH_LOG, defaulting to error.
func InitLogger() {
	level := strings.ToLower(os.Getenv(EnvLevel))
	if level == "" {
		level = "error"
	}
	log.SetHandler(NewHandler(os.Stderr))
	log.SetLevelFromString(level)
}

// Handler writes one line per entry: timestamp, level initial, message and
// the entry fields as key=value sorted by key.
type Handler struct {
	mu sync.Mutex
	w  io.Writer
}

// NewHandler returns a Handler writing to w.
func NewHandler(w io.Writer) *Handler {
	return &Handler{w: w}
}

// HandleLog implements the log.Handler interface.
func (h *Handler) HandleLog(e *log.Entry) error {
	names := e.Fields.Names()
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %.1s %s", e.Timestamp.Format(time.DateTime), strings.ToUpper(e.Level.String()), e.Message)
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields.Get(name))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}
