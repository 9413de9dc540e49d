package merger

import "github.com/coasterranker/coastermap/pkg/coasters"

// DefaultUpdateFields returns the fields copied from fetched records onto
// existing ones.
func DefaultUpdateFields() []string {
	return []string{
		coasters.FieldName,
		coasters.FieldParkName,
		coasters.FieldCity,
		coasters.FieldCountry,
		coasters.FieldStatus,
		coasters.FieldOpened,
		coasters.FieldManufacturer,
		coasters.FieldModel,
		coasters.FieldType,
		coasters.FieldDesign,
		coasters.FieldHeight,
		coasters.FieldDrop,
		coasters.FieldAngle,
		coasters.FieldVerticalAngle,
		coasters.FieldSpeed,
		coasters.FieldLength,
		coasters.FieldInversions,
		coasters.FieldElements,
		coasters.FieldDuration,
	}
}

// fieldPolicy copies fetched values onto an existing record.
type fieldPolicy struct {
	fields []string
}

// apply updates existing in place. Allow-listed fields are copied only when
// the fetched value is non-empty, so curated data is never erased. The
// external id is always copied when present. In split context each split
// field takes the fetched value, falling back to the existing one.
func (p fieldPolicy) apply(existing, fetched *coasters.Record, split bool) {
	for _, field := range p.fields {
		if v, ok := fetched.Get(field); ok && !coasters.IsEmpty(v) {
			existing.Set(field, coasters.CloneValue(v))
		}
	}

	if v, ok := fetched.Get(coasters.FieldExternalID); ok {
		existing.Set(coasters.FieldExternalID, coasters.CloneValue(v))
	}

	if split {
		p.applySplit(existing, fetched)
	}
}

func (p fieldPolicy) applySplit(existing, fetched *coasters.Record) {
	for _, field := range coasters.SplitFields {
		v, ok := fetched.Get(field)
		if !ok || v == nil {
			v, ok = existing.Get(field)
		}
		if !ok || v == nil {
			if field != coasters.FieldIsSplitTrack {
				continue
			}
			v = true
		}
		existing.Set(field, coasters.CloneValue(v))
	}
}
