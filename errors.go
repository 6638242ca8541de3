package monthlog

import (
	"errors"
	"fmt"
)

var (
	// ErrUsage is returned when the command line doesn't name exactly an
	// input and an output.
	ErrUsage = errors.New("wrong number of arguments")

	// ErrEmptyInput is returned when the input has no lines at all, so
	// there is no header to take the dataset keyword from.
	ErrEmptyInput = errors.New("empty input: no header line")
)

// InputOpenError describes a failure to open the input.
type InputOpenError struct {
	Path string
	Err  error
}

func (e *InputOpenError) Error() string {
	return fmt.Sprintf("can't open input file %s: %v", e.Path, e.Err)
}

func (e *InputOpenError) Unwrap() error { return e.Err }

// OutputOpenError describes a failure to create the output.
type OutputOpenError struct {
	Path string
	Err  error
}

func (e *OutputOpenError) Error() string {
	return fmt.Sprintf("can't open output file %s: %v", e.Path, e.Err)
}

func (e *OutputOpenError) Unwrap() error { return e.Err }

// MalformedRecordError is returned for a record that doesn't hold the
// dash-delimited date the sort key is made of.
type MalformedRecordError struct {
	Line int    // 1-based position in the dataset, 0 if unknown
	Text string // the offending record
}

func (e *MalformedRecordError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("malformed record %q: no dash-delimited date", e.Text)
	}
	return fmt.Sprintf("malformed record #%d %q: no dash-delimited date", e.Line, e.Text)
}

// MalformedHeaderError is returned when the header line has no second
// field to take the dataset keyword from.
type MalformedHeaderError struct {
	Header string
}

func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("malformed header %q: want at least 2 space-separated fields", e.Header)
}

// Exit codes returned by ExitCode.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// ExitCode maps an error returned by MainCLI to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	}
	return ExitError
}
