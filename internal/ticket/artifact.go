// Package ticket renders the scannable artifact attached to a booking.
package ticket

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

// Payload is the data embedded in a ticket QR code. It is everything a door
// scanner needs to verify a booking without a network round-trip.
type Payload struct {
	Reference   string    `json:"reference"`
	EventID     uuid.UUID `json:"event_id"`
	EventTitle  string    `json:"event_title"`
	EventDate   time.Time `json:"event_date"`
	TicketCount int       `json:"ticket_count"`
	HolderName  string    `json:"holder_name"`
}

// Encode renders the payload as a QR PNG and returns it base64-encoded for
// storage on the booking row. Pure: same payload, same output.
func Encode(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", errors.Wrap(err, "marshal ticket payload")
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, 256)
	if err != nil {
		return "", errors.Wrap(err, "encode qr")
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

// Decode parses the JSON payload out of scanned QR contents.
func Decode(contents []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(contents, &p); err != nil {
		return Payload{}, errors.Wrap(err, "unmarshal ticket payload")
	}
	return p, nil
}
