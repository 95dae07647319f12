package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/session"
)

// Logger is a core.Logger that records entries for assertions.
type Logger struct {
	mutex   sync.Mutex
	Entries []string
}

var _ core.Logger = (*Logger)(nil)

func NewLogger() *Logger { return &Logger{} }

func (l *Logger) log(lvl, msg string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.Entries = append(l.Entries, fmt.Sprintf("%s: %s", lvl, msg))
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg) }

// StubValidator is a canned session.TokenValidator. Calls are counted and
// signalled on Called so tests can wait out asynchronous revalidation.
type StubValidator struct {
	OK  bool
	Err error

	mutex  sync.Mutex
	calls  int
	Called chan struct{}
}

var _ session.TokenValidator = (*StubValidator)(nil)

func NewStubValidator(ok bool, err error) *StubValidator {
	return &StubValidator{OK: ok, Err: err, Called: make(chan struct{}, 16)}
}

func (v *StubValidator) ValidateToken(ctx context.Context, token string, usr session.User) (bool, error) {
	v.mutex.Lock()
	v.calls++
	v.mutex.Unlock()
	select {
	case v.Called <- struct{}{}:
	default:
	}
	return v.OK, v.Err
}

func (v *StubValidator) Calls() int {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	return v.calls
}
