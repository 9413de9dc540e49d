package coasters

// Catalog is the working state of a merge run: the record store and the
// cross-reference table, loaded once and mutated in place.
type Catalog struct {
	Store          *Store
	CrossReference *CrossReference
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		Store:          NewStore(),
		CrossReference: NewCrossReference(),
	}
}

// Clone returns a deep copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	return &Catalog{
		Store:          c.Store.Clone(),
		CrossReference: c.CrossReference.Clone(),
	}
}

// Equal reports whether both catalogs hold identical stores and tables.
func (c *Catalog) Equal(other *Catalog) bool {
	return c.Store.Equal(other.Store) && c.CrossReference.Equal(other.CrossReference)
}

// Record returns the record mapped to an external id through the
// cross-reference table.
func (c *Catalog) Record(externalID string) (*Record, bool) {
	id, ok := c.CrossReference.Get(externalID)
	if !ok {
		return nil, false
	}
	return c.Store.Get(id)
}
