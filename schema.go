package pdz

import "fmt"

// FieldKind identifies the wire layout of a schema field. Scalar kinds are
// fixed-width little-endian values; the remaining kinds are variable-length
// constructs whose sizing comes from the Field descriptor itself or from a
// previously decoded count field.
type FieldKind uint8

const (
	KindU8 FieldKind = iota
	KindI8
	KindU16
	KindI16
	KindU32
	KindI32
	KindU64
	KindI64
	KindF32
	KindF64
	KindRaw         // opaque byte block of Size bytes
	KindString      // u32 byte-length prefix + UTF-16LE text
	KindFixedString // Size characters (2 bytes each), no prefix
	KindTime        // 16-byte SYSTEMTIME
	KindBlob        // u32 byte-length prefix + opaque bytes
	KindGroup       // repeating group: Count (fixed) or CountField x Inner
	KindArray       // homogeneous Elem array; see Field.CountField/Prefixed
)

// width returns the wire width of fixed scalar kinds, 0 for everything else.
func (k FieldKind) width() int {
	switch k {
	case KindU8, KindI8:
		return 1
	case KindU16, KindI16:
		return 2
	case KindU32, KindI32, KindF32:
		return 4
	case KindU64, KindI64, KindF64:
		return 8
	}
	return 0
}

// Field is one descriptor in a record schema.
type Field struct {
	Name       string
	Kind       FieldKind
	Size       int       // KindRaw: byte width; KindFixedString: character count
	Count      int       // KindGroup: fixed repetition count (when CountField is empty)
	CountField string    // KindGroup/KindArray: name of a previously decoded count field
	Prefixed   bool      // KindArray: element count is an immediate u32 prefix
	Elem       FieldKind // KindArray: element kind
	Inner      []Field   // KindGroup: the repeated sub-schema
}

// RecordSchema is the ordered field layout for one record type.
type RecordSchema struct {
	Name   string
	Fields []Field
}

// opaque reports whether the schema retains its payload as raw bytes
// without field decomposition.
func (s RecordSchema) opaque() bool {
	return len(s.Fields) == 0
}

// validate walks the schema checking that every count-field reference
// points at an integer field declared before the group or array that uses
// it. A failure here is a catalog bug, not an input problem.
func (s RecordSchema) validate() error {
	return validateFields(s.Name, s.Fields, map[string]bool{})
}

func validateFields(record string, fields []Field, declared map[string]bool) error {
	for _, f := range fields {
		switch f.Kind {
		case KindGroup:
			if f.CountField != "" && !declared[f.CountField] {
				return &SchemaRefError{Record: record, Field: f.Name, CountField: f.CountField}
			}
			// inner fields see the enclosing scope, but not vice versa
			inner := make(map[string]bool, len(declared))
			for k := range declared {
				inner[k] = true
			}
			if err := validateFields(record, f.Inner, inner); err != nil {
				return err
			}
		case KindArray:
			if f.CountField != "" && !declared[f.CountField] {
				return &SchemaRefError{Record: record, Field: f.Name, CountField: f.CountField}
			}
			if !f.Prefixed && f.CountField == "" && f.Elem.width() == 0 {
				return fmt.Errorf("schema %q: array %q has non-scalar element kind", record, f.Name)
			}
		}
		declared[f.Name] = true
	}
	return nil
}

// schemaFor resolves the schema for a record type under the given format
// version. ok is false for types absent from that version's catalog; such
// records are retained as opaque byte blocks.
func schemaFor(v Version, recordType uint16) (RecordSchema, bool) {
	switch v {
	case Version25:
		s, ok := recordsV25[recordType]
		return s, ok
	case Version24:
		s, ok := recordsV24[recordType]
		return s, ok
	}
	return RecordSchema{}, false
}

// Schema table constructors. These keep the catalog tables declarative -
// one line per wire field, mirroring the format documentation.

func u8(name string) Field  { return Field{Name: name, Kind: KindU8} }
func i8(name string) Field  { return Field{Name: name, Kind: KindI8} }
func u16(name string) Field { return Field{Name: name, Kind: KindU16} }
func i16(name string) Field { return Field{Name: name, Kind: KindI16} }
func u32(name string) Field { return Field{Name: name, Kind: KindU32} }
func i32(name string) Field { return Field{Name: name, Kind: KindI32} }
func u64(name string) Field { return Field{Name: name, Kind: KindU64} }
func i64(name string) Field { return Field{Name: name, Kind: KindI64} }
func f32(name string) Field { return Field{Name: name, Kind: KindF32} }
func f64(name string) Field { return Field{Name: name, Kind: KindF64} }

func raw(name string, size int) Field {
	return Field{Name: name, Kind: KindRaw, Size: size}
}

func str(name string) Field {
	return Field{Name: name, Kind: KindString}
}

func fixedStr(name string, chars int) Field {
	return Field{Name: name, Kind: KindFixedString, Size: chars}
}

func systime(name string) Field {
	return Field{Name: name, Kind: KindTime}
}

func blob(name string) Field {
	return Field{Name: name, Kind: KindBlob}
}

func group(name string, count int, inner ...Field) Field {
	return Field{Name: name, Kind: KindGroup, Count: count, Inner: inner}
}

func groupBy(name, countField string, inner ...Field) Field {
	return Field{Name: name, Kind: KindGroup, CountField: countField, Inner: inner}
}

// array with a count-field reference; an empty countField consumes the
// remainder of the payload.
func array(name string, elem FieldKind, countField string) Field {
	return Field{Name: name, Kind: KindArray, Elem: elem, CountField: countField}
}

// arrayPrefixed reads an immediate u32 element count before the elements.
func arrayPrefixed(name string, elem FieldKind) Field {
	return Field{Name: name, Kind: KindArray, Elem: elem, Prefixed: true}
}
