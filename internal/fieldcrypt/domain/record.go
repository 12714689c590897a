package domain

import (
	"strings"
)

// Record is a decoded JSON document. Field codecs and projections operate on
// records through dot-notation paths ("bankDetails.accountNumber") so nested
// sensitive fields are addressable without schema types.
type Record map[string]any

// Get resolves a dot-notation path. The second return reports whether the
// full path exists. Reads never create structure.
func (r Record) Get(path string) (any, bool) {
	segments := strings.Split(path, ".")
	current := r

	for i, segment := range segments {
		value, ok := current[segment]
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			return value, true
		}
		next, ok := value.(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}

	return nil, false
}

// Set writes a value at a dot-notation path, creating missing intermediate
// maps along the way. Traversing through an existing non-map value returns
// ErrPathConflict and leaves the record unchanged.
func (r Record) Set(path string, value any) error {
	segments := strings.Split(path, ".")
	current := map[string]any(r)

	for _, segment := range segments[:len(segments)-1] {
		existing, ok := current[segment]
		if !ok {
			created := map[string]any{}
			current[segment] = created
			current = created
			continue
		}
		next, ok := existing.(map[string]any)
		if !ok {
			return ErrPathConflict
		}
		current = next
	}

	current[segments[len(segments)-1]] = value
	return nil
}

// Delete removes the value at a dot-notation path. Missing paths are a no-op;
// intermediate maps are never created or removed.
func (r Record) Delete(path string) {
	segments := strings.Split(path, ".")
	current := map[string]any(r)

	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			return
		}
		current = next
	}

	delete(current, segments[len(segments)-1])
}

// Merge applies a JSON merge patch onto the record in place. Nested maps
// merge recursively, nil values delete the key, anything else replaces the
// existing value. Patch substructure is deep-copied so later mutation of the
// patch never reaches the record.
func (r Record) Merge(patch Record) {
	mergeMap(r, patch)
}

func mergeMap(dst, patch map[string]any) {
	for key, value := range patch {
		if value == nil {
			delete(dst, key)
			continue
		}
		patchMap, patchIsMap := asMap(value)
		if !patchIsMap {
			dst[key] = cloneValue(value)
			continue
		}
		existingMap, existingIsMap := asMap(dst[key])
		if !existingIsMap {
			dst[key] = cloneMap(patchMap)
			continue
		}
		mergeMap(existingMap, patchMap)
	}
}

func asMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case Record:
		return typed, true
	default:
		return nil, false
	}
}

// Clone returns a deep copy of the record. Maps and slices are copied
// recursively; scalar values are shared, which is safe because records hold
// decoded JSON scalars only.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return Record(cloneMap(r))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneMap(typed)
	case Record:
		return cloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}
