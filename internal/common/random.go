package common

import "crypto/rand"

// RandomBytes returns n bytes from crypto/rand. It panics if the system
// random source fails.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// Wipe zeroes b in place. Used for passwords read from the terminal.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
