/*
Package cash implements the value transfer service.

Every account is bound to a single owner and a single ticker. Accounts must be
created before they can receive tokens and they can only be closed once
empty. Transfers move an exact amount and never partially apply.

Tickers that accounts can be opened for are listed in the package
configuration, loaded from the genesis file.
*/
package cash
