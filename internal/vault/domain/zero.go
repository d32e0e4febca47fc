package domain

// Zero overwrites a byte slice holding sensitive material. Go gives no
// guarantee against copies made by the runtime, so this is best effort.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
