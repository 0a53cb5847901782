package x

import (
	"github.com/iov-one/escrowd"
)

// Authenticator tells which conditions signed the transaction being
// processed. Handlers receive it in their constructor and use it to check
// that a party of an agreement or the owner of an account authorized the
// message.
type Authenticator interface {
	// GetConditions returns all conditions fulfilled by the transaction.
	GetConditions(escrowd.Context) []escrowd.Condition
	// HasAddress returns true if any fulfilled condition has given
	// address.
	HasAddress(escrowd.Context, escrowd.Address) bool
}

// MultiAuth is an Authenticator that accepts conditions of any of the
// grouped authenticators.
type MultiAuth []Authenticator

var _ Authenticator = MultiAuth{}

// ChainAuth groups given authenticators. The application uses it to combine
// signature authentication with any other source of conditions.
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth(impls)
}

// GetConditions returns conditions of all authenticators, in order.
func (m MultiAuth) GetConditions(ctx escrowd.Context) []escrowd.Condition {
	var res []escrowd.Condition
	for _, impl := range m {
		res = append(res, impl.GetConditions(ctx)...)
	}
	return res
}

// HasAddress returns true if any authenticator has given address.
func (m MultiAuth) HasAddress(ctx escrowd.Context, addr escrowd.Address) bool {
	for _, impl := range m {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}
