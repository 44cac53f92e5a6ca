// Package report renders monitoring payloads into the wire envelope shared by
// every endpoint: a three element JSON array holding the service name, an
// object with the current time, and the payload itself.
//
//	["orders", {"current_time": "2026-10-18T09:30:00.000000+02:00"}, {"status": "up"}]
package report

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeLayout is the ISO-8601 layout used for every timestamp in a report.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// TimeNow abstracts time for tests; overridden in tests.
var TimeNow = func() time.Time { return time.Now() }

// Timestamp formats t with TimeLayout.
func Timestamp(t time.Time) string {
	return t.Format(TimeLayout)
}

// Envelope is a formatted report.
type Envelope struct {
	Service     string
	CurrentTime string
	Payload     any
}

// clock is the second element of the wire array.
type clock struct {
	CurrentTime string `json:"current_time"`
}

// New wraps payload for service, stamped with the current time.
func New(service string, payload any) Envelope {
	return Envelope{
		Service:     service,
		CurrentTime: Timestamp(TimeNow()),
		Payload:     payload,
	}
}

// Encode is a shorthand for marshalling New(service, payload).
func Encode(service string, payload any) ([]byte, error) {
	return json.Marshal(New(service, payload))
}

// MarshalJSON writes the envelope as a JSON array.
func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Service, clock{CurrentTime: e.CurrentTime}, e.Payload})
}

// UnmarshalJSON reads an envelope back from its array form. The payload is
// decoded into generic JSON values.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("report: envelope is not an array: %w", err)
	}
	if len(parts) != 3 {
		return fmt.Errorf("report: envelope has %d elements, want 3", len(parts))
	}

	var out Envelope
	if err := json.Unmarshal(parts[0], &out.Service); err != nil {
		return fmt.Errorf("report: service name: %w", err)
	}
	var c clock
	if err := json.Unmarshal(parts[1], &c); err != nil {
		return fmt.Errorf("report: clock: %w", err)
	}
	out.CurrentTime = c.CurrentTime
	if err := json.Unmarshal(parts[2], &out.Payload); err != nil {
		return fmt.Errorf("report: payload: %w", err)
	}

	*e = out
	return nil
}
