package pdz

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode/utf16"
)

// cursor is a bounds-checked little-endian reader over a byte slice. The
// slice is either the whole file or a single record's payload; base is the
// absolute file offset of buf[0] so errors can report where decoding broke.
// A failed read leaves pos untouched.
type cursor struct {
	buf  []byte
	pos  int
	base int
}

func newCursor(buf []byte, base int) *cursor {
	return &cursor{buf: buf, base: base}
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.pos
}

// offset is the absolute file offset of the next read.
func (c *cursor) offset() int {
	return c.base + c.pos
}

// take returns the next n bytes (a view into the underlying buffer) and
// advances.
func (c *cursor) take(n int, field string) ([]byte, error) {
	if n < 0 || n > c.remaining() {
		return nil, &TruncatedError{Field: field, Offset: c.offset(), Need: n, Have: c.remaining()}
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) u8(field string) (uint8, error) {
	b, err := c.take(1, field)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) i8(field string) (int8, error) {
	v, err := c.u8(field)
	return int8(v), err
}

func (c *cursor) u16(field string) (uint16, error) {
	b, err := c.take(2, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) i16(field string) (int16, error) {
	v, err := c.u16(field)
	return int16(v), err
}

func (c *cursor) u32(field string) (uint32, error) {
	b, err := c.take(4, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) i32(field string) (int32, error) {
	v, err := c.u32(field)
	return int32(v), err
}

func (c *cursor) u64(field string) (uint64, error) {
	b, err := c.take(8, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *cursor) i64(field string) (int64, error) {
	v, err := c.u64(field)
	return int64(v), err
}

func (c *cursor) f32(field string) (float32, error) {
	v, err := c.u32(field)
	return math.Float32frombits(v), err
}

func (c *cursor) f64(field string) (float64, error) {
	v, err := c.u64(field)
	return math.Float64frombits(v), err
}

// systemTime reads the 16-byte Windows SYSTEMTIME structure: eight
// consecutive little-endian uint16 fields.
func (c *cursor) systemTime(field string) (SystemTime, error) {
	b, err := c.take(systemTimeSize, field)
	if err != nil {
		return SystemTime{}, err
	}
	return SystemTime{
		Year:        binary.LittleEndian.Uint16(b[0:2]),
		Month:       binary.LittleEndian.Uint16(b[2:4]),
		DayOfWeek:   binary.LittleEndian.Uint16(b[4:6]),
		Day:         binary.LittleEndian.Uint16(b[6:8]),
		Hour:        binary.LittleEndian.Uint16(b[8:10]),
		Minute:      binary.LittleEndian.Uint16(b[10:12]),
		Second:      binary.LittleEndian.Uint16(b[12:14]),
		Millisecond: binary.LittleEndian.Uint16(b[14:16]),
	}, nil
}

const systemTimeSize = 16

// decodeUTF16LE decodes 2-bytes-per-character wide string data, rejecting
// odd lengths and dangling surrogates. Trailing NUL padding is stripped.
func decodeUTF16LE(data []byte) (string, error) {
	if len(data)%2 != 0 {
		return "", fmt.Errorf("odd length UTF-16LE string (%d bytes)", len(data))
	}
	units := make([]uint16, len(data)/2)
	for i := 0; i < len(data); i += 2 {
		units[i/2] = binary.LittleEndian.Uint16(data[i : i+2])
	}
	for i := 0; i < len(units); i++ {
		switch u := units[i]; {
		case u >= 0xD800 && u < 0xDC00:
			if i+1 >= len(units) || units[i+1] < 0xDC00 || units[i+1] >= 0xE000 {
				return "", fmt.Errorf("unterminated surrogate pair at code unit %d", i)
			}
			i++
		case u >= 0xDC00 && u < 0xE000:
			return "", fmt.Errorf("unpaired low surrogate at code unit %d", i)
		}
	}
	return strings.Trim(string(utf16.Decode(units)), "\x00"), nil
}

// encodeUTF16LE is the inverse of decodeUTF16LE, used by the record encoder.
func encodeUTF16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[i*2:], u)
	}
	return out
}
