package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(10350), toCents(decimal.RequireFromString("103.50")))
	assert.Equal(t, int64(100), toCents(decimal.NewFromInt(1)))
	// Sub-cent residue from fee math rounds at the cent boundary.
	assert.Equal(t, int64(117), toCents(decimal.RequireFromString("1.16655")))
}

func TestIntentIDFromSecret(t *testing.T) {
	id, err := intentIDFromSecret("pi_3abc_secret_xyz")
	require.NoError(t, err)
	assert.Equal(t, "pi_3abc", id)

	_, err = intentIDFromSecret("garbage")
	require.Error(t, err)

	_, err = intentIDFromSecret("_secret_xyz")
	require.Error(t, err)
}
