package pdz

import (
	"fmt"

	"github.com/Velocidex/ordereddict"
)

// scope is the incrementally built field map for one record or one
// repeating-group instance. Count-field references resolve against the
// innermost scope first, then outward - a group's inner schema can use
// counts declared either inside the group or earlier in the record.
type scope struct {
	dict   *ordereddict.Dict
	parent *scope
}

func (s *scope) lookupInt(name string) (int64, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.dict.Get(name); ok {
			return intValue(v)
		}
	}
	return 0, false
}

// decodePayload interprets a record schema against a cursor scoped to
// exactly one payload. On success every byte the header promised has been
// accounted for; undecoded remainder is attached as a *TrailingBytesError
// warning. The returned error is a *SchemaRefError for catalog defects or
// a *TruncatedError when the declared payload is shorter than the schema
// requires - the caller decides whether the latter is fatal.
func decodePayload(schema RecordSchema, cur *cursor) (*ordereddict.Dict, []error, error) {
	sc := &scope{dict: ordereddict.NewDict()}
	warnings, err := decodeFields(schema.Name, schema.Fields, cur, sc)
	if err != nil {
		return sc.dict, warnings, err
	}
	if rem := cur.remaining(); rem > 0 {
		warnings = append(warnings, &TrailingBytesError{Record: schema.Name, Offset: cur.offset(), Remaining: rem})
	}
	return sc.dict, warnings, nil
}

func decodeFields(record string, fields []Field, cur *cursor, sc *scope) ([]error, error) {
	var warnings []error
	for _, f := range fields {
		switch f.Kind {
		case KindGroup:
			w, err := decodeGroup(record, f, cur, sc)
			warnings = append(warnings, w...)
			if err != nil {
				return warnings, err
			}
		case KindArray:
			w, err := decodeArray(record, f, cur, sc)
			warnings = append(warnings, w...)
			if err != nil {
				return warnings, err
			}
		case KindString:
			byteLen, err := cur.u32(f.Name)
			if err != nil {
				return warnings, err
			}
			data, err := cur.take(int(byteLen), f.Name)
			if err != nil {
				return warnings, err
			}
			if s, serr := decodeUTF16LE(data); serr == nil {
				sc.dict.Set(f.Name, s)
			} else {
				// malformed text: keep the raw bytes, warn, carry on
				sc.dict.Set(f.Name, data)
				warnings = append(warnings, &StringEncodingError{Field: f.Name, ByteLen: int(byteLen), Reason: serr.Error()})
			}
		case KindFixedString:
			data, err := cur.take(f.Size*2, f.Name)
			if err != nil {
				return warnings, err
			}
			if s, serr := decodeUTF16LE(data); serr == nil {
				sc.dict.Set(f.Name, s)
			} else {
				sc.dict.Set(f.Name, data)
				warnings = append(warnings, &StringEncodingError{Field: f.Name, ByteLen: f.Size * 2, Reason: serr.Error()})
			}
		case KindBlob:
			byteLen, err := cur.u32(f.Name)
			if err != nil {
				return warnings, err
			}
			data, err := cur.take(int(byteLen), f.Name)
			if err != nil {
				return warnings, err
			}
			sc.dict.Set(f.Name, data)
		case KindRaw:
			data, err := cur.take(f.Size, f.Name)
			if err != nil {
				return warnings, err
			}
			sc.dict.Set(f.Name, data)
		case KindTime:
			t, err := cur.systemTime(f.Name)
			if err != nil {
				return warnings, err
			}
			sc.dict.Set(f.Name, t)
		default:
			v, err := decodeScalar(f, cur)
			if err != nil {
				return warnings, err
			}
			sc.dict.Set(f.Name, v)
		}
	}
	return warnings, nil
}

func decodeScalar(f Field, cur *cursor) (any, error) {
	switch f.Kind {
	case KindU8:
		return cur.u8(f.Name)
	case KindI8:
		return cur.i8(f.Name)
	case KindU16:
		return cur.u16(f.Name)
	case KindI16:
		return cur.i16(f.Name)
	case KindU32:
		return cur.u32(f.Name)
	case KindI32:
		return cur.i32(f.Name)
	case KindU64:
		return cur.u64(f.Name)
	case KindI64:
		return cur.i64(f.Name)
	case KindF32:
		return cur.f32(f.Name)
	case KindF64:
		return cur.f64(f.Name)
	}
	return nil, fmt.Errorf("field %q: unhandled kind %d", f.Name, f.Kind)
}

func decodeGroup(record string, f Field, cur *cursor, sc *scope) ([]error, error) {
	var warnings []error
	count := int64(f.Count)
	if f.CountField != "" {
		n, ok := sc.lookupInt(f.CountField)
		if !ok {
			return warnings, &SchemaRefError{Record: record, Field: f.Name, CountField: f.CountField}
		}
		count = n
	}
	if count < 0 {
		warnings = append(warnings, fmt.Errorf("record %q: group %q has negative repeat count %d", record, f.Name, count))
		count = 0
	}
	// the claimed count is untrusted input; cap the pre-allocation by the
	// remaining payload, which bounds how many instances can actually decode
	capacity := count
	if rem := int64(cur.remaining()); capacity > rem {
		capacity = rem
	}
	items := make([]*ordereddict.Dict, 0, capacity)
	for i := int64(0); i < count; i++ {
		sub := &scope{dict: ordereddict.NewDict(), parent: sc}
		w, err := decodeFields(record, f.Inner, cur, sub)
		warnings = append(warnings, w...)
		if err != nil {
			sc.dict.Set(f.Name, items)
			return warnings, err
		}
		items = append(items, sub.dict)
	}
	sc.dict.Set(f.Name, items)
	return warnings, nil
}

func decodeArray(record string, f Field, cur *cursor, sc *scope) ([]error, error) {
	var warnings []error
	width := f.Elem.width()
	var count int64
	switch {
	case f.Prefixed:
		n, err := cur.u32(f.Name)
		if err != nil {
			return warnings, err
		}
		count = int64(n)
	case f.CountField != "":
		n, ok := sc.lookupInt(f.CountField)
		if !ok {
			return warnings, &SchemaRefError{Record: record, Field: f.Name, CountField: f.CountField}
		}
		if n < 0 {
			warnings = append(warnings, fmt.Errorf("record %q: array %q has negative element count %d", record, f.Name, n))
			n = 0
		}
		count = n
	default:
		count = int64(cur.remaining() / width)
	}
	v, err := readArray(f, cur, int(count))
	if err != nil {
		return warnings, err
	}
	sc.dict.Set(f.Name, v)
	return warnings, nil
}

func readArray(f Field, cur *cursor, count int) (any, error) {
	// reject a claimed element count the payload cannot hold before sizing
	// the backing store from it
	if need := count * f.Elem.width(); need > cur.remaining() {
		return nil, &TruncatedError{Field: f.Name, Offset: cur.offset(), Need: need, Have: cur.remaining()}
	}
	switch f.Elem {
	case KindU16:
		out := make([]uint16, count)
		for i := range out {
			v, err := cur.u16(f.Name)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case KindI16:
		out := make([]int16, count)
		for i := range out {
			v, err := cur.i16(f.Name)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case KindU32:
		out := make([]uint32, count)
		for i := range out {
			v, err := cur.u32(f.Name)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case KindI32:
		out := make([]int32, count)
		for i := range out {
			v, err := cur.i32(f.Name)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case KindF32:
		out := make([]float32, count)
		for i := range out {
			v, err := cur.f32(f.Name)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case KindF64:
		out := make([]float64, count)
		for i := range out {
			v, err := cur.f64(f.Name)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("field %q: unsupported array element kind %d", f.Name, f.Elem)
}
