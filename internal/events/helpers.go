package events

import "time"

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nullablePayload(p []byte) *string {
	if len(p) == 0 {
		return nil
	}
	s := string(p)
	return &s
}
