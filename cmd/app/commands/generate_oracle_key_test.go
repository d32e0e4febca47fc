package commands

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunGenerateOracleKey(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RunGenerateOracleKey(&buf))

	encoded := strings.TrimSpace(buf.String())
	key, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Len(t, key, 32)

	var other bytes.Buffer
	require.NoError(t, RunGenerateOracleKey(&other))
	assert.NotEqual(t, buf.String(), other.String())
}
