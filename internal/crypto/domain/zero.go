package domain

// Zero overwrites a byte slice in place. Callers defer it over derived key
// material so plaintext keys do not outlive the operation that needed them.
// Safe on nil slices.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
