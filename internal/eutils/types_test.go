package eutils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSummary_KeepsUIDOrder(t *testing.T) {
	s, err := ParseSummary([]byte(`{"uids":["b","a"],"a":{"uid":"a"},"b":{"uid":"b"}}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a"}, s.UIDs)
	assert.Len(t, s.Records, 2)
	_, hasUIDs := s.Records["uids"]
	assert.False(t, hasUIDs, "uids must not be kept as a record")
}

func TestParseSummary_WithoutUIDs(t *testing.T) {
	s, err := ParseSummary([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.NotNil(t, s.UIDs)
}

func TestParseSummary_BadUIDs(t *testing.T) {
	_, err := ParseSummary([]byte(`{"uids":"oops"}`))
	assert.Error(t, err)
}

func TestSummary_MarshalRoundTrip(t *testing.T) {
	s, err := ParseSummary([]byte(`{"uids":["1"],"1":{"gpl":"570"}}`))
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	again, err := ParseSummary(data)
	require.NoError(t, err)
	assert.Equal(t, s.UIDs, again.UIDs)
	assert.JSONEq(t, string(s.Records["1"]), string(again.Records["1"]))
}
