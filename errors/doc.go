/*
Package errors implements the error model used by all escrowd packages.

Every failure returned to a client wraps one of the root errors created with
Register. A root error carries a stable ABCI code, so that clients can
distinguish error kinds without parsing messages. Extensions register their
own codes, for example x/escrow declares one code for every guard of the
agreement lifecycle.

Use Wrap or Wrapf to attach context while keeping the kind, and Is to test
the kind:

	if escrow.ErrTermsChanged.Is(err) {
		// reload the agreement
	}

The most inner Wrap attaches a stack trace. Format an error with
	%s  the error message
	%v  the error message and the place where it was created
	%+v the error message followed by the full stack trace
*/
package errors
