/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
Each bucket contains only one type of model, which is
serialized using the model's own codec. Every bucket can
maintain any number of secondary indexes that are kept in
sync with the stored entities on every write and delete.
*/
package orm
