package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to
// log.Printf but may be replaced with SetLogger; the processing stages
// use it for per-item recoverable failures and stage summaries.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger and returns the previous one
// so tests can restore it. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) (prev func(format string, v ...interface{})) {
	prev = Logf
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return prev
	}
	Logf = f
	return prev
}
