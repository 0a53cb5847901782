package orm

import (
	"regexp"

	"github.com/iov-one/escrowd"
)

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	escrowd.Persistent
	Validate() error
}

// ModelSlicePtr represents a pointer to a slice of models. Think of it as
// *[]Model. Because of Go type system, using []Model type would not
// work for us. Instead we use a placeholder type and the validation is
// done during the runtime.
type ModelSlicePtr interface{}

// Indexer calculates the secondary index key for a given model.
// Returning a nil key means that the model is not indexed.
type Indexer func(Model) ([]byte, error)

// MultiKeyIndexer calculates the secondary index keys for a given model.
type MultiKeyIndexer func(Model) ([][]byte, error)

func asMultiKeyIndexer(indexer Indexer) MultiKeyIndexer {
	return func(m Model) ([][]byte, error) {
		key, err := indexer(m)
		switch {
		case err != nil:
			return nil, err
		case key == nil:
			return nil, nil
		}
		return [][]byte{key}, nil
	}
}

var (
	isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString
	isIndexName  = regexp.MustCompile(`^[a-z_]{3,20}$`).MatchString
)
