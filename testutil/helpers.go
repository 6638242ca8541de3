// Package testutil provides helpers shared by monthlog tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
)

// WriteFile is a test helper that writes content to a file named name in dir
// and returns its full path.
func WriteFile(tb testing.TB, dir, name string, content []byte) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		tb.Fatalf("can't write %s: %v", path, err)
	}
	return path
}

// DisableLogging is a test helper that disable logging (in fact it sets its
// level to panic). It returns a function which when called, resets it to its
// previous level. Its useful to be called as follows in test/benchmarks:
//
//  func TestFoo(t *testing.T) {
//      defer DisableLogging()()
//
//      // logging is disabled for the whole test
//  }
func DisableLogging() (reset func()) {
	lvl := log.GetLevel()
	log.SetLevel(log.PanicLevel)
	return func() { log.SetLevel(lvl) }
}

// SetLogLevel sets the global log level for the execution of the current tb.
// Though setting the log level is safe for use from concurrent goroutines, it's
// not advised to use SetLogLevel in parallel tests/benchmark, i.e. using
// t.Parallel().
func SetLogLevel(tb testing.TB, level log.Level) {
	cur := log.GetLevel()
	log.SetLevel(level)
	tb.Cleanup(func() { log.SetLevel(cur) })
}
