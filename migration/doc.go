/*
Package migration provides tooling necessary for working with schema versioned
entities. Functionality provided here can be applied both to messages and
models.

1. Every schema versioned entity must declare metadata as its first
attribute and expose it using the GetMetadata method. A nil metadata value is
not valid.

2. Register migration functions in package init. Each upgrade must provide a
migration function. Use NoModification for those versions that require no
change. For example:

    func init() {
        migration.MustRegister(1, &MyModel{}, migration.NoModification)
    }

3. Wrap the orm.ModelBucket used to store the entity using NewModelBucket.
Models are migrated on the fly when read and before being written. A model
with no schema set defaults to the latest registered version.

The highest registered version of an entity is its current schema version.
Schema versions are never persisted separately.
*/
package migration
