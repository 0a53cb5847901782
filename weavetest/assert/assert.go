/*
Package assert provides the few assertions used by the escrowd tests. Every
assertion stops the test on failure.

	assert.Nil(t, err)
	assert.Equal(t, escrow.StateFunded, agreement.State)
	assert.IsErr(t, escrow.ErrInvalidSeller, err)
	assert.FieldError(t, msg.Validate(), "Amount", errors.ErrAmount)
*/
package assert

import (
	"reflect"

	"github.com/iov-one/escrowd/errors"
)

// Tester is the subset of testing.TB used by the assertions.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Logger is a Tester that can write additional details of a failure.
type Logger interface {
	Tester
	Logf(string, ...interface{})
}

// Nil fails the test if given value is not nil. A typed nil, like a nil
// *escrow.Agreement stored in an interface, is nil as well.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if !isNil(value) {
		// %+v prints the full stack trace of an error.
		t.Fatalf("want a nil value, got %+v", value)
	}
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

// Equal fails the test if two values are not deeply equal.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("values not equal \nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// Panics fails the test if given function returns without panicking.
func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	fn()
}

// IsErr fails the test if got is not of the same kind as want. A nil want
// requires a nil got.
func IsErr(t Tester, want, got error) {
	t.Helper()
	if want == got {
		return
	}
	if w, ok := want.(interface{ Is(error) bool }); ok && w.Is(got) {
		return
	}
	t.Fatalf("want %q, got %+v", want, got)
}

// FieldError fails the test unless err holds exactly one error for given
// field name and that error is of the want kind. Use a nil want to ensure
// that no error was reported for the field.
func FieldError(t Logger, err error, fieldName string, want *errors.Error) {
	t.Helper()
	errs := errors.FieldErrors(err, fieldName)
	if len(errs) > 1 {
		for i, e := range errs {
			t.Logf("\terror %d: %q", i+1, e)
		}
		t.Fatalf("want at most one %q field error, got %d", fieldName, len(errs))
		return
	}
	switch {
	case want == nil && len(errs) == 1:
		t.Fatalf("want no %q field error, got %q", fieldName, errs[0])
	case want != nil && len(errs) == 0:
		t.Fatalf("no %q field error found", fieldName)
	case want != nil && !want.Is(errs[0]):
		t.Fatalf("want %q field error %q, got %q", fieldName, want, errs[0])
	}
}
