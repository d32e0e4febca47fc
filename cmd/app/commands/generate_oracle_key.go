package commands

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// RunGenerateOracleKey generates a random key for the local key oracle and
// writes it base64-encoded, ready for the LOCAL_ORACLE_KEY environment variable.
func RunGenerateOracleKey(w io.Writer) error {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}

	_, err := fmt.Fprintln(w, base64.StdEncoding.EncodeToString(key))
	return err
}
