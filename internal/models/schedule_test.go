package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawJSONScanNull(t *testing.T) {
	pattern := RawJSON(`{"freq":"weekly"}`)
	require.NoError(t, pattern.Scan(nil))
	assert.Nil(t, []byte(pattern))

	value, err := pattern.Value()
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestRawJSONScanBytes(t *testing.T) {
	var pattern RawJSON
	require.NoError(t, pattern.Scan([]byte(`{"freq":"weekly"}`)))
	assert.Equal(t, `{"freq":"weekly"}`, string(pattern))

	value, err := pattern.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"freq":"weekly"}`), value)
}

func TestRawJSONScanUnsupported(t *testing.T) {
	var pattern RawJSON
	require.Error(t, pattern.Scan(42))
}
