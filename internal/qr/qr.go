package qr

import (
	"encoding/json"

	"github.com/skip2/go-qrcode"
)

// Payload is the correlation token baked into a ticket QR. It is not
// security-sensitive: validation looks the RSVP up server-side and never
// trusts the decoded content.
type Payload struct {
	RSVPID     string `json:"rsvp_id"`
	UserID     string `json:"user_id"`
	EventID    string `json:"event_id"`
	EventTitle string `json:"event_title"`
}

// Generate renders the payload as a 256px PNG.
func Generate(p Payload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(data), qrcode.Medium, 256)
}
