/*
Package escrowd defines the common interfaces used to put together an escrow
ledger application, as well as implementations of some of the simpler
components (when interfaces would be too much overhead).

Context is passed as a context.Context between the application, the
decorators, and the handlers. This package defines the keys used to store
information about the block being processed, such as height, time, and
chain id. Each extension may add its own keys to enrich the context.

For every value of type T that is kept in the context there are two
functions:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)

WithXYZ panics if the value was previously set, so that lower level
modules cannot overwrite it.
*/
package escrowd
