package pdz

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Velocidex/ordereddict"
)

// EncodeRecord frames a payload with the 6-byte record header.
func EncodeRecord(recordType uint16, payload []byte) []byte {
	out := make([]byte, recordHeaderSize+len(payload))
	binary.LittleEndian.PutUint16(out[0:2], recordType)
	binary.LittleEndian.PutUint32(out[2:6], uint32(len(payload)))
	copy(out[recordHeaderSize:], payload)
	return out
}

// EncodePayload serialises a field map back to the wire layout described by
// the schema - the inverse of payload decoding for invertible schemas. The
// field map must bind every schema field; group instance counts and
// remainder-array lengths are taken from the bound values, count fields
// must agree with them.
func EncodePayload(schema RecordSchema, fields *ordereddict.Dict) ([]byte, error) {
	var buf bytes.Buffer
	sc := &scope{dict: fields}
	if err := encodeFields(schema.Name, schema.Fields, &buf, sc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeFields(record string, fields []Field, buf *bytes.Buffer, sc *scope) error {
	for _, f := range fields {
		v, ok := sc.dict.Get(f.Name)
		if !ok {
			return fmt.Errorf("record %q: field %q not bound", record, f.Name)
		}
		switch f.Kind {
		case KindGroup:
			items, ok := v.([]*ordereddict.Dict)
			if !ok {
				return fmt.Errorf("record %q: group %q is %T, want []*ordereddict.Dict", record, f.Name, v)
			}
			if err := checkCount(record, f, len(items), sc); err != nil {
				return err
			}
			for _, item := range items {
				sub := &scope{dict: item, parent: sc}
				if err := encodeFields(record, f.Inner, buf, sub); err != nil {
					return err
				}
			}
		case KindArray:
			if err := encodeArray(record, f, v, buf, sc); err != nil {
				return err
			}
		case KindString:
			data, err := wireString(record, f, v)
			if err != nil {
				return err
			}
			putU32(buf, uint32(len(data)))
			buf.Write(data)
		case KindFixedString:
			data, err := wireString(record, f, v)
			if err != nil {
				return err
			}
			want := f.Size * 2
			if len(data) > want {
				return fmt.Errorf("record %q: field %q is %d bytes, fixed width is %d", record, f.Name, len(data), want)
			}
			buf.Write(data)
			for i := len(data); i < want; i++ {
				buf.WriteByte(0)
			}
		case KindBlob:
			data, ok := v.([]byte)
			if !ok {
				return fmt.Errorf("record %q: field %q is %T, want []byte", record, f.Name, v)
			}
			putU32(buf, uint32(len(data)))
			buf.Write(data)
		case KindRaw:
			data, ok := v.([]byte)
			if !ok {
				return fmt.Errorf("record %q: field %q is %T, want []byte", record, f.Name, v)
			}
			if len(data) != f.Size {
				return fmt.Errorf("record %q: field %q is %d bytes, want %d", record, f.Name, len(data), f.Size)
			}
			buf.Write(data)
		case KindTime:
			t, ok := v.(SystemTime)
			if !ok {
				return fmt.Errorf("record %q: field %q is %T, want SystemTime", record, f.Name, v)
			}
			for _, u := range []uint16{t.Year, t.Month, t.DayOfWeek, t.Day, t.Hour, t.Minute, t.Second, t.Millisecond} {
				putU16(buf, u)
			}
		default:
			if err := encodeScalar(record, f, v, buf); err != nil {
				return err
			}
		}
	}
	return nil
}

// wireString accepts the decoder's two possible bindings: decoded text or
// the raw-bytes fallback for malformed strings.
func wireString(record string, f Field, v any) ([]byte, error) {
	switch s := v.(type) {
	case string:
		return encodeUTF16LE(s), nil
	case []byte:
		return s, nil
	}
	return nil, fmt.Errorf("record %q: field %q is %T, want string", record, f.Name, v)
}

func checkCount(record string, f Field, got int, sc *scope) error {
	if f.CountField != "" {
		want, ok := sc.lookupInt(f.CountField)
		if !ok {
			return &SchemaRefError{Record: record, Field: f.Name, CountField: f.CountField}
		}
		if want != int64(got) {
			return fmt.Errorf("record %q: field %q has %d instances but %q = %d", record, f.Name, got, f.CountField, want)
		}
		return nil
	}
	if f.Kind == KindGroup && got != f.Count {
		return fmt.Errorf("record %q: group %q has %d instances, want %d", record, f.Name, got, f.Count)
	}
	return nil
}

func encodeArray(record string, f Field, v any, buf *bytes.Buffer, sc *scope) error {
	var count int
	write := func() error { return nil }
	switch vals := v.(type) {
	case []uint16:
		count = len(vals)
		write = func() error {
			for _, e := range vals {
				putU16(buf, e)
			}
			return nil
		}
	case []int16:
		count = len(vals)
		write = func() error {
			for _, e := range vals {
				putU16(buf, uint16(e))
			}
			return nil
		}
	case []uint32:
		count = len(vals)
		write = func() error {
			for _, e := range vals {
				putU32(buf, e)
			}
			return nil
		}
	case []int32:
		count = len(vals)
		write = func() error {
			for _, e := range vals {
				putU32(buf, uint32(e))
			}
			return nil
		}
	case []float32:
		count = len(vals)
		write = func() error {
			for _, e := range vals {
				putU32(buf, math.Float32bits(e))
			}
			return nil
		}
	case []float64:
		count = len(vals)
		write = func() error {
			for _, e := range vals {
				putU64(buf, math.Float64bits(e))
			}
			return nil
		}
	default:
		return fmt.Errorf("record %q: field %q is %T, want a numeric slice", record, f.Name, v)
	}
	if f.Prefixed {
		putU32(buf, uint32(count))
	} else if err := checkCount(record, f, count, sc); err != nil {
		return err
	}
	return write()
}

func encodeScalar(record string, f Field, v any, buf *bytes.Buffer) error {
	switch f.Kind {
	case KindF32:
		fv, ok := floatValue(v)
		if !ok {
			return fmt.Errorf("record %q: field %q is %T, want float", record, f.Name, v)
		}
		putU32(buf, math.Float32bits(float32(fv)))
		return nil
	case KindF64:
		fv, ok := floatValue(v)
		if !ok {
			return fmt.Errorf("record %q: field %q is %T, want float", record, f.Name, v)
		}
		putU64(buf, math.Float64bits(fv))
		return nil
	}
	n, ok := intValue(v)
	if !ok {
		return fmt.Errorf("record %q: field %q is %T, want integer", record, f.Name, v)
	}
	switch f.Kind {
	case KindU8, KindI8:
		buf.WriteByte(byte(n))
	case KindU16, KindI16:
		putU16(buf, uint16(n))
	case KindU32, KindI32:
		putU32(buf, uint32(n))
	case KindU64, KindI64:
		putU64(buf, uint64(n))
	default:
		return fmt.Errorf("record %q: field %q has unhandled kind %d", record, f.Name, f.Kind)
	}
	return nil
}

func floatValue(v any) (float64, bool) {
	switch fv := v.(type) {
	case float32:
		return float64(fv), true
	case float64:
		return fv, true
	}
	if n, ok := intValue(v); ok {
		return float64(n), true
	}
	return 0, false
}

func putU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func putU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}
