package weavetest

import (
	"testing"

	"github.com/iov-one/escrowd"
)

// TagValue returns the value of the tag with given key. The test fails if
// the result is nil or no such tag exists.
func TagValue(t testing.TB, res *escrowd.DeliverResult, key string) string {
	t.Helper()
	if res == nil {
		t.Fatalf("no result to look up %q tag in", key)
	}
	for _, tag := range res.Tags {
		if string(tag.Key) == key {
			return string(tag.Value)
		}
	}
	t.Fatalf("no %q tag in %d tags", key, len(res.Tags))
	return ""
}
