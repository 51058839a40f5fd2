package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	RoomNumber string `json:"room_number"`
	Nights     int    `json:"nights"`
}

func TestCloudEvent_Envelope(t *testing.T) {
	ce, err := NewCloudEvent("service-reservation", "reservation.created", samplePayload{RoomNumber: "101", Nights: 2})
	require.NoError(t, err)
	assert.Equal(t, "1.0", ce.SpecVersion)
	assert.NotEmpty(t, ce.ID)
	assert.Equal(t, "application/json", ce.DataContentType)

	raw, err := json.Marshal(ce)
	require.NoError(t, err)

	parsed, err := ParseCloudEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, ce.ID, parsed.ID)
	assert.Equal(t, "reservation.created", parsed.Type)

	var payload samplePayload
	require.NoError(t, parsed.ParseData(&payload))
	assert.Equal(t, samplePayload{RoomNumber: "101", Nights: 2}, payload)
}

func TestParseCloudEvent_Rejects(t *testing.T) {
	_, err := ParseCloudEvent([]byte("{"))
	assert.Error(t, err)

	_, err = ParseCloudEvent([]byte(`{"id":"1"}`))
	assert.Error(t, err)
}
