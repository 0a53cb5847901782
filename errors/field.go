package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field wraps given error with the name of the attribute it was found at
// and an optional description. It returns nil if err is nil. A stack trace
// is attached unless err already carries one.
//
// The name is the Go name of the attribute, for example Buyer or
// AutoCompleteDuration. Use dot notation for a nested attribute, like
// Terms.Buyer, and the element index for a list, like Tickers.2
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if errIsNil(err) {
		return nil
	}
	if rawStackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: err, field: fieldName, desc: description}
}

// AppendField adds the field error of fieldErrOrNil to errorsOrNil. It is
// the building block of a model Validate method:
//
//   errs = errors.AppendField(errs, "Owner", a.Owner.Validate())
//   errs = errors.AppendField(errs, "Ticker", validateTicker(a.Ticker))
//   return errs
func AppendField(errorsOrNil error, fieldName string, fieldErrOrNil error) error {
	return Append(errorsOrNil, Field(fieldName, fieldErrOrNil, ""))
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (err *fieldError) Error() string {
	if err.desc == "" {
		return fmt.Sprintf("field %q: %s", err.field, err.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", err.field, err.desc, err.parent)
}

// Format implements fmt.Formatter the same way a wrapped error does.
func (err *fieldError) Format(s fmt.State, verb rune) {
	formatError(s, verb, err)
}

func (err *fieldError) Cause() error {
	return err.parent
}

func (err *fieldError) Field() string {
	return err.field
}

type fielder interface {
	Field() string
}

// FieldErrors returns all errors reported for given field name. The error
// tree is searched through grouped and wrapped errors. A matching field
// error is returned as a whole, errors it wraps are not inspected.
func FieldErrors(err error, fieldName string) []error {
	if errIsNil(err) {
		return nil
	}
	var res []error
	for err != nil {
		if f, ok := err.(fielder); ok && f.Field() == fieldName {
			return append(res, err)
		}
		// Unpack returns all children, so the cause must not be
		// followed as well.
		if u, ok := err.(unpacker); ok {
			for _, e := range u.Unpack() {
				res = append(res, FieldErrors(e, fieldName)...)
			}
			return res
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return res
}
