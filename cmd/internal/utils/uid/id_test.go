package uid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	assert.Error(t, Init(5000), "machine id out of range")

	require.NoError(t, Init(1))
	a, b := Generate(), Generate()
	assert.Positive(t, a)
	assert.Greater(t, b, a)
}
