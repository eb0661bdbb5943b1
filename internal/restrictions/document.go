package restrictions

import (
	"fmt"
	"reflect"
	"sort"
)

// Document is a restrictions tree keyed by category then field.
//
// Stored documents are sparse. In a patch passed to Apply, a category mapped to nil clears
// that category and a field mapped to nil resets that field to its default.
type Document map[string]map[string]any

// Clone returns a deep copy of d
func (d Document) Clone() Document {
	if d == nil {
		return Document{}
	}
	out := make(Document, len(d))
	for category, fields := range d {
		if fields == nil {
			out[category] = nil
			continue
		}
		copied := make(map[string]any, len(fields))
		for key, value := range fields {
			copied[key] = cloneValue(value)
		}
		out[category] = copied
	}
	return out
}

// Get returns the explicit value stored for category.key, if any
func (d Document) Get(category, key string) (any, bool) {
	fields, ok := d[category]
	if !ok || fields == nil {
		return nil, false
	}
	value, ok := fields[key]
	return value, ok && value != nil
}

// Defaults returns the fully resolved default document
func Defaults() Document {
	out := make(Document, len(schema))
	for _, category := range schema {
		fields := make(map[string]any, len(category.Fields))
		for _, field := range category.Fields {
			fields[field.Key] = cloneValue(field.Default)
		}
		out[category.Name] = fields
	}
	return out
}

// MergeWithDefaults resolves a sparse document against the defaults.
//
// The result holds every field of every category. Entries of "partial" that are unknown or
// invalid are ignored and read as their defaults.
func MergeWithDefaults(partial Document) Document {
	resolved := Defaults()
	for category, fields := range Clean(partial) {
		for key, value := range fields {
			resolved[category][key] = value
		}
	}
	return resolved
}

// SetField returns a copy of doc where exactly category.key is replaced by value.
//
// A nil value removes the override so the field reads its default again.
// Sibling fields, explicit or defaulted, are left untouched and doc itself is never modified.
// If category, key or value is invalid, ErrInvalidField is returned together with nil.
func SetField(doc Document, category, key string, value any) (Document, error) {
	out := doc.Clone()
	if err := out.set(category, key, value); err != nil {
		return nil, err
	}
	return out.compact(), nil
}

// Apply merges a sparse patch into doc at key level and returns the result.
//
// Categories mapped to nil are cleared. Every other leaf is applied as SetField would.
// Leaves of one patch are disjoint, so the order they are applied in does not matter.
// On any invalid entry the whole patch is rejected.
func Apply(doc Document, patch Document) (Document, error) {
	out := doc.Clone()

	categories := make([]string, 0, len(patch))
	for category := range patch {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		if _, ok := fieldIndex[category]; !ok {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidField, category)
		}
		fields := patch[category]
		if fields == nil {
			delete(out, category)
			continue
		}

		keys := make([]string, 0, len(fields))
		for key := range fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			if err := out.set(category, key, fields[key]); err != nil {
				return nil, err
			}
		}
	}
	return out.compact(), nil
}

// Normalize validates a caller supplied partial document and returns its canonical form
func Normalize(partial Document) (Document, error) {
	return Apply(Document{}, partial)
}

// Clean drops unknown or invalid entries of a stored document and canonicalises the rest.
//
// Unlike Normalize it never fails, so legacy or hand edited rows still load.
func Clean(doc Document) Document {
	out := Document{}
	for category, fields := range doc {
		for key, value := range fields {
			field, err := lookupField(category, key)
			if err != nil || value == nil {
				continue
			}
			normalized, err := normalizeValue(category, field, value)
			if err != nil {
				continue
			}
			if out[category] == nil {
				out[category] = map[string]any{}
			}
			out[category][key] = normalized
		}
	}
	return out
}

// equal reports whether two documents hold the same explicit values
func equal(a, b Document) bool {
	a, b = a.compact(), b.compact()
	if len(a) != len(b) {
		return false
	}
	for category, fields := range a {
		other, ok := b[category]
		if !ok || len(fields) != len(other) {
			return false
		}
		for key, value := range fields {
			otherValue, ok := other[key]
			if !ok || !valuesEqual(value, otherValue) {
				return false
			}
		}
	}
	return true
}

func (d Document) set(category, key string, value any) error {
	field, err := lookupField(category, key)
	if err != nil {
		return err
	}

	if value == nil {
		if fields := d[category]; fields != nil {
			delete(fields, key)
		}
		return nil
	}

	normalized, err := normalizeValue(category, field, value)
	if err != nil {
		return err
	}
	if d[category] == nil {
		d[category] = map[string]any{}
	}
	d[category][key] = normalized
	return nil
}

// compact removes empty and nil categories
func (d Document) compact() Document {
	out := make(Document, len(d))
	for category, fields := range d {
		if len(fields) == 0 {
			continue
		}
		out[category] = fields
	}
	return out
}

func valuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
