package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimestamps(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 678_000_000, time.FixedZone("BRT", -3*3600))

	assert.Equal(t, "2024-01-02T06:04:05.678Z", ISOTimestamp(ts))
	assert.Equal(t, "2024-01-02T06-04-05-678Z", FileTimestamp(ts))
	assert.Equal(t, "1970-01-01T00:00:01Z", FormatEpoch(1000))
}

func TestIsTruthy(t *testing.T) {
	for _, s := range []string{"1", "true", " TRUE ", "yes", "sim"} {
		assert.True(t, IsTruthy(s), s)
	}
	for _, s := range []string{"", "0", "false", "nope"} {
		assert.False(t, IsTruthy(s), s)
	}
}

func TestSanitize(t *testing.T) {
	name := "  Nome  "
	req := struct {
		Sigla  string
		Nome   *string
		Empty  *string
		Ramais []string
		Count  int
	}{
		Sigla:  " ABC ",
		Nome:   &name,
		Ramais: []string{" 100 ", "101"},
		Count:  3,
	}

	Sanitize(&req)

	assert.Equal(t, "ABC", req.Sigla)
	assert.Equal(t, "Nome", *req.Nome)
	assert.Nil(t, req.Empty)
	assert.Equal(t, []string{"100", "101"}, req.Ramais)
	assert.Equal(t, 3, req.Count)
}

func TestSanitizePanicsOnNonPointer(t *testing.T) {
	assert.Panics(t, func() { Sanitize(struct{}{}) })
}
