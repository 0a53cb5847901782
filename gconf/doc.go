/*
Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Each package can keep a single configuration entity. The configuration is
loaded from the "conf" section of the genesis file, keyed by the package
name, and stored under a reserved "_c:" prefixed key.
*/
package gconf
