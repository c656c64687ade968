package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := DeriveSealKey([]byte("device-secret"), []byte("salt1234"))

	in := payload{Token: "tok-123", Email: "alice@campus.edu"}
	blob, err := SealValue(in, key)
	require.NoError(t, err)

	var out payload
	require.NoError(t, OpenValue(blob, key, &out))
	assert.Equal(t, in, out)
}

func TestSealValue_NonceUnique(t *testing.T) {
	key := DeriveSealKey([]byte("device-secret"), []byte("salt1234"))

	a, err := SealValue("x", key)
	require.NoError(t, err)
	b, err := SealValue("x", key)
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "two seals of the same value must differ")
}

func TestOpenValue_WrongKey(t *testing.T) {
	key := DeriveSealKey([]byte("device-secret"), []byte("salt1234"))
	other := DeriveSealKey([]byte("other-secret"), []byte("salt1234"))

	blob, err := SealValue("x", key)
	require.NoError(t, err)

	var out string
	err = OpenValue(blob, other, &out)
	require.ErrorIs(t, err, ErrSealedDataInvalid)
}

func TestOpenValue_Truncated(t *testing.T) {
	key := DeriveSealKey([]byte("device-secret"), []byte("salt1234"))

	var out string
	err := OpenValue([]byte{1, 2, 3}, key, &out)
	require.ErrorIs(t, err, ErrSealedDataInvalid)
}

func TestDeriveSealKey_Deterministic(t *testing.T) {
	a := DeriveSealKey([]byte("s"), []byte("salt"))
	b := DeriveSealKey([]byte("s"), []byte("salt"))
	c := DeriveSealKey([]byte("s"), []byte("other"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 32)
}
