package domain

// Project builds the list representation of a record: a fresh record holding
// only the policy's safe keys.
//
// Safety here is structural, not cosmetic. Sensitive fields are not masked or
// emptied; their keys simply never exist in the output. Values are
// deep-copied so the projection never aliases the source record. A safe key
// that overlaps a sensitive path is skipped even if policy validation was
// bypassed.
func Project(rec Record, policy *FieldPolicy) Record {
	out := Record{}

	for _, key := range policy.SafeKeys {
		if overlapsSensitive(key, policy.SensitivePaths) {
			continue
		}
		value, ok := rec.Get(key)
		if !ok {
			continue
		}
		_ = out.Set(key, cloneValue(value))
	}

	return out
}

func overlapsSensitive(key string, sensitivePaths []string) bool {
	for _, sensitive := range sensitivePaths {
		if pathsOverlap(key, sensitive) {
			return true
		}
	}
	return false
}
