package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/markmywords/core"
	"github.com/trezcool/markmywords/core/document"
	inmemdb "github.com/trezcool/markmywords/storage/database/inmem"
)

const (
	SeedUsername = "Dylan"
	SeedPassword = "54852"
)

// Entry is one call recorded by Logger.
type Entry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger records entries instead of printing them.
type Logger struct {
	mu      sync.Mutex
	entries []Entry
}

func NewLogger() *Logger { return &Logger{} }

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args) }

// Entries returns the recorded entries of the given level, all of them when level is empty.
func (l *Logger) Entries(level string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var entries []Entry
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			entries = append(entries, e)
		}
	}
	return entries
}

// NewState opens a state over a fresh in-memory store seeded with Dylan/54852.
func NewState(t *testing.T) (*document.State, *inmemdb.Store, *Logger) {
	t.Helper()

	store := inmemdb.NewStore()
	logger := NewLogger()
	st, err := document.Open(context.Background(), store, document.Seed(SeedUsername, SeedPassword), logger)
	if err != nil {
		t.Fatalf("document.Open() failed: %v", err)
	}
	return st, store, logger
}

// SequentialIDs makes document.NewID return id-1, id-2, ... for the duration of the test.
func SequentialIDs(t *testing.T) {
	var (
		mu sync.Mutex
		n  int
	)
	orig := document.NewID
	document.NewID = func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
	t.Cleanup(func() { document.NewID = orig })
}

// FreezeTime pins document.NowFunc to now for the duration of the test.
func FreezeTime(t *testing.T, now time.Time) {
	orig := document.NowFunc
	document.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { document.NowFunc = orig })
}

// NewValidator returns a validator set up the way the app sets it up.
func NewValidator() *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())
	return validate
}
