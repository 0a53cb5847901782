package migration

import (
	"testing"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/orm"
	"github.com/iov-one/escrowd/store"
	"github.com/iov-one/escrowd/weavetest/assert"
)

func TestSchemaVersionedModelBucket(t *testing.T) {
	reg := newRegister()
	reg.MustRegister(1, &MyModel{}, NoModification)

	db := store.MemStore()

	b := NewModelBucket(orm.NewModelBucket("mymodel", &MyModel{}))
	// Use custom register instead of the global one to avoid pollution
	// from the application during tests.
	b.useRegister(reg)

	assert.Nil(t, b.Put(db, []byte("schema_one"), &MyModel{
		Metadata: &escrowd.Metadata{Schema: 1},
		Cnt:      5,
	}))

	var m MyModel
	assert.Nil(t, b.One(db, []byte("schema_one"), &m))
	if m.Metadata.Schema != 1 || m.Cnt != 5 {
		t.Fatalf("unexpected result model: %#v", m)
	}

	// Storing a model with a schema version higher than currently active
	// is not allowed.
	err := b.Put(db, []byte("schema_two"), &MyModel{
		Metadata: &escrowd.Metadata{Schema: 2},
		Cnt:      11,
	})
	assert.IsErr(t, errors.ErrSchema, err)

	// Registering a new version unlocks saving entities with a higher
	// schema version.
	reg.MustRegister(2, &MyModel{}, func(db escrowd.ReadOnlyKVStore, m Migratable) error {
		msg := m.(*MyModel)
		msg.Cnt += 2
		return msg.err
	})
	assert.Nil(t, b.Put(db, []byte("schema_two"), &MyModel{
		Metadata: &escrowd.Metadata{Schema: 2},
		Cnt:      11,
	}))

	// Now that the schema was upgraded, all returned models must use it.
	assert.Nil(t, b.One(db, []byte("schema_one"), &m))
	if m.Metadata.Schema != 2 || m.Cnt != 5+2 {
		t.Fatalf("unexpected result model: %#v", m)
	}
	assert.Nil(t, b.One(db, []byte("schema_two"), &m))
	if m.Metadata.Schema != 2 || m.Cnt != 11 {
		t.Fatalf("unexpected result model: %#v", m)
	}

	// Stored data is not altered by reading.
	raw, err := db.Get([]byte("mymodel:schema_one"))
	assert.Nil(t, err)
	var stored MyModel
	assert.Nil(t, stored.Unmarshal(raw))
	assert.Equal(t, uint32(1), stored.Metadata.Schema)
}

func TestSchemaDefaultsToCurrent(t *testing.T) {
	reg := newRegister()
	reg.MustRegister(1, &MyModel{}, NoModification)
	reg.MustRegister(2, &MyModel{}, NoModification)

	db := store.MemStore()
	b := NewModelBucket(orm.NewModelBucket("mymodel", &MyModel{}))
	b.useRegister(reg)

	model := &MyModel{Metadata: &escrowd.Metadata{}, Cnt: 1}
	assert.Nil(t, b.Create(db, []byte("a"), model))
	assert.Equal(t, uint32(2), model.Metadata.Schema)

	err := b.Create(db, []byte("b"), &MyModel{Cnt: 1})
	assert.IsErr(t, errors.ErrMetadata, err)
}

func TestSchemaVersionedByIndex(t *testing.T) {
	reg := newRegister()
	reg.MustRegister(1, &MyModel{}, NoModification)

	byCnt := func(m orm.Model) ([]byte, error) {
		if m.(*MyModel).Cnt > 10 {
			return []byte("big"), nil
		}
		return []byte("small"), nil
	}
	db := store.MemStore()
	b := NewModelBucket(orm.NewModelBucket("mymodel", &MyModel{}, orm.WithIndex("size", byCnt, false)))
	b.useRegister(reg)

	for i, cnt := range []int64{3, 30, 7} {
		key := []byte{byte('a' + i)}
		assert.Nil(t, b.Put(db, key, &MyModel{Metadata: &escrowd.Metadata{Schema: 1}, Cnt: cnt}))
	}

	reg.MustRegister(2, &MyModel{}, func(db escrowd.ReadOnlyKVStore, m Migratable) error {
		m.(*MyModel).Cnt *= 10
		return nil
	})

	var small []MyModel
	keys, err := b.ByIndex(db, "size", []byte("small"), &small)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(keys))
	assert.Equal(t, int64(30), small[0].Cnt)
	assert.Equal(t, int64(70), small[1].Cnt)
	assert.Equal(t, uint32(2), small[1].Metadata.Schema)

	var big []*MyModel
	_, err = b.ByIndex(db, "size", []byte("big"), &big)
	assert.Nil(t, err)
	assert.Equal(t, int64(300), big[0].Cnt)
}
