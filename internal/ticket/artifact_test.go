package ticket

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePayload() Payload {
	return Payload{
		Reference:   "DD-ABC123-XY42KQ",
		EventID:     uuid.New(),
		EventTitle:  "Impressionists After Dark",
		EventDate:   time.Date(2026, 9, 12, 19, 30, 0, 0, time.UTC),
		TicketCount: 3,
		HolderName:  "Grace Hopper",
	}
}

func TestEncodeProducesPNG(t *testing.T) {
	out, err := Encode(samplePayload())
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(out)
	require.NoError(t, err)
	require.Greater(t, len(raw), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, raw[:4])
}

func TestEncodeDeterministic(t *testing.T) {
	p := samplePayload()
	a, err := Encode(p)
	require.NoError(t, err)
	b, err := Encode(p)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecodeRoundTrip(t *testing.T) {
	p := samplePayload()
	data, err := json.Marshal(p)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = Decode([]byte("not json"))
	assert.Error(t, err)
}
