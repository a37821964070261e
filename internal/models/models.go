package models

import (
	"bytes"
	"fmt"
	"time"
)

// dateTimeInput accepts an optional fractional part which is then truncated.
const dateTimeInput = "2006-01-02T15:04:05.999999999"

// LocalDateTime is a zone-less timestamp with second precision.
type LocalDateTime struct {
	time.Time
}

func NewLocalDateTime(t time.Time) LocalDateTime {
	return LocalDateTime{Time: t.Truncate(time.Second)}
}

// ParseDateTime reads a wire timestamp in the local zone.
func ParseDateTime(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(dateTimeInput, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date-time %q, expected %s", raw, DateTimeLayout)
	}
	return t.Truncate(time.Second), nil
}

func (t LocalDateTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Local().Format(DateTimeLayout) + `"`), nil
}

func (t *LocalDateTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid date-time %s", data)
	}
	parsed, err := ParseDateTime(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t LocalDateTime) String() string {
	return t.Local().Format(DateTimeLayout)
}

// Ptr returns nil for the zero value.
func (t LocalDateTime) Ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}
