/*
Package x contains the extensions the escrow daemon is built from.

Extensions implement common functionality (Handler, Decorator,
etc.) and are combined together to construct the application.
cash keeps the account balances, sigs authenticates transactions,
escrow runs the agreement lifecycle and utils provides the
decorators wrapping every handler.

This package holds the Authenticator abstraction shared by all of
them, so that handlers never depend on x/sigs directly.
*/
package x
