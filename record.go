package pdz

import (
	"fmt"
	"math"
	"time"

	"github.com/Velocidex/ordereddict"
)

// SystemTime is the Windows SYSTEMTIME structure as stored on the wire.
type SystemTime struct {
	Year        uint16
	Month       uint16
	DayOfWeek   uint16
	Day         uint16
	Hour        uint16
	Minute      uint16
	Second      uint16
	Millisecond uint16
}

func (t SystemTime) String() string {
	return fmt.Sprintf("%d-%02d-%02d %02d:%02d:%02d", t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second)
}

// Time converts to a time.Time in UTC; the millisecond field carries over,
// the day-of-week field is derived by time.Date.
func (t SystemTime) Time() time.Time {
	return time.Date(int(t.Year), time.Month(t.Month), int(t.Day),
		int(t.Hour), int(t.Minute), int(t.Second), int(t.Millisecond)*1e6, time.UTC)
}

func (t SystemTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// Record is one decoded record. Fields preserves the schema's field order;
// it is nil for records retained opaque (unknown types, and all pdz24
// payloads). Raw always holds the undecoded payload bytes - a view into
// the buffer handed to Parse. Warnings carries non-fatal per-record decode
// problems (trailing bytes, malformed strings, payload-local truncation).
type Record struct {
	Type     uint16
	Name     string
	Fields   *ordereddict.Dict
	Raw      []byte
	Warnings []error
}

// Known reports whether the record's payload was decomposed into fields.
func (r *Record) Known() bool {
	return r.Fields != nil
}

// Int returns a named integer field, coercing any of the scalar integer
// widths the wire format uses.
func (r *Record) Int(name string) (int64, bool) {
	if r.Fields == nil {
		return 0, false
	}
	v, ok := r.Fields.Get(name)
	if !ok {
		return 0, false
	}
	return intValue(v)
}

// Uint is Int for callers that want the unsigned view.
func (r *Record) Uint(name string) (uint64, bool) {
	n, ok := r.Int(name)
	if !ok || n < 0 {
		return 0, ok && n >= 0
	}
	return uint64(n), true
}

func (r *Record) Float(name string) (float64, bool) {
	if r.Fields == nil {
		return 0, false
	}
	v, ok := r.Fields.Get(name)
	if !ok {
		return 0, false
	}
	switch f := v.(type) {
	case float32:
		return float64(f), true
	case float64:
		return f, true
	}
	if n, ok := intValue(v); ok {
		return float64(n), true
	}
	return 0, false
}

func (r *Record) Str(name string) (string, bool) {
	if r.Fields == nil {
		return "", false
	}
	v, ok := r.Fields.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (r *Record) Bytes(name string) ([]byte, bool) {
	if r.Fields == nil {
		return nil, false
	}
	v, ok := r.Fields.Get(name)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (r *Record) Time(name string) (SystemTime, bool) {
	if r.Fields == nil {
		return SystemTime{}, false
	}
	v, ok := r.Fields.Get(name)
	if !ok {
		return SystemTime{}, false
	}
	t, ok := v.(SystemTime)
	return t, ok
}

// Group returns the decoded instances of a repeating group field.
func (r *Record) Group(name string) ([]*ordereddict.Dict, bool) {
	if r.Fields == nil {
		return nil, false
	}
	v, ok := r.Fields.Get(name)
	if !ok {
		return nil, false
	}
	g, ok := v.([]*ordereddict.Dict)
	return g, ok
}

// intValue coerces any decoded integer scalar to int64.
func intValue(v any) (int64, bool) {
	switch n := v.(type) {
	case uint8:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case int16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}
