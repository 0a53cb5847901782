/*
Package utils contains decorators that are not bound to any extension.

Logging writes a log entry for every processed transaction, Recovery turns
panics into errors, Savepoint isolates the changes of a transaction so that
a failure rolls them back, and Metrics exports processing counters and
durations to prometheus.
*/
package utils
