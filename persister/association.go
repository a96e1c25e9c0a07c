package persister

// AssociationDescriptor describes where the foreign key of an association lives.
// It is resolved once when the persister is registered and consulted as plain data
// by the dependency graph builder.
//
// The set of variants is closed: OwningForeignKey, InverseSide and EmbeddedIndirect.
type AssociationDescriptor interface {
	association()
}

// OwningForeignKey is an association whose foreign key column is stored in the
// owning entity's own row (many-to-one, owning one-to-one).
type OwningForeignKey struct {
	Column   string
	Nullable bool
}

// InverseSide is an association mapped by the other entity: the foreign key
// column lives in the target's table. Mandatory is set when that column is
// NOT NULL, so the target cannot be inserted before this row exists.
type InverseSide struct {
	MappedBy  string
	Mandatory bool
}

// EmbeddedIndirect is an association reached through an embedded or composite
// value held by the owning entity.
type EmbeddedIndirect struct {
	Path  string
	Inner AssociationDescriptor
}

func (OwningForeignKey) association() {}
func (InverseSide) association()      {}
func (EmbeddedIndirect) association() {}

// Unwrap strips any number of EmbeddedIndirect layers and returns the
// descriptor that carries the real foreign key information.
func Unwrap(d AssociationDescriptor) AssociationDescriptor {
	for {
		e, ok := d.(EmbeddedIndirect)
		if !ok {
			return d
		}
		d = e.Inner
	}
}
