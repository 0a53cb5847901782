package errors

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

type stackTracer interface {
	error
	StackTrace() errors.StackTrace
}

// rawStackTrace returns the first found stack trace carried by given error
// or any wrapped error. It returns nil if no stack trace is found.
func rawStackTrace(err error) errors.StackTrace {
	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}

// stackTrace is like rawStackTrace but the trace starts at the code that
// created the error. Frames of this package and of the panic handling are
// dropped from the top, the runtime and the test runner from the bottom.
func stackTrace(err error) errors.StackTrace {
	st := rawStackTrace(err)
	if st == nil {
		return nil
	}
	for len(st) > 0 && isInternalFrame(st[0]) {
		st = st[1:]
	}
	for len(st) > 0 && isOuterFrame(st[len(st)-1]) {
		st = st[:len(st)-1]
	}
	return st
}

const pkgFuncPrefix = "github.com/iov-one/escrowd/errors."

func isInternalFrame(f errors.Frame) bool {
	name, file := frameFunc(f)
	if strings.HasSuffix(file, "_test.go") {
		return false
	}
	return strings.HasPrefix(name, pkgFuncPrefix) || strings.HasPrefix(name, "runtime.")
}

func isOuterFrame(f errors.Frame) bool {
	name, _ := frameFunc(f)
	return strings.HasPrefix(name, "runtime.") || strings.HasPrefix(name, "testing.")
}

func frameFunc(f errors.Frame) (name, file string) {
	pc := uintptr(f) - 1
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "", ""
	}
	file, _ = fn.FileLine(pc)
	return fn.Name(), file
}

// Format implements fmt.Formatter.
//
//   %s  the error message
//   %v  the error message with the creation place [file:line]
//   %+v the error message followed by the full stack trace
func (e *wrappedError) Format(s fmt.State, verb rune) {
	formatError(s, verb, e)
}

func formatError(s fmt.State, verb rune, err error) {
	if verb != 'v' {
		io.WriteString(s, err.Error())
		return
	}
	st := stackTrace(err)
	if s.Flag('+') {
		fmt.Fprintf(s, "%s\n", err.Error())
		if st != nil {
			fmt.Fprintf(s, "%+v", st)
		}
		return
	}
	io.WriteString(s, err.Error())
	if len(st) > 0 {
		fmt.Fprintf(s, " [%s]", creationPlace(st[0]))
	}
}

// creationPlace returns the file name and the line of given frame.
func creationPlace(f errors.Frame) string {
	return fmt.Sprintf("%s:%d", f, f)
}
