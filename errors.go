package pdz

import "fmt"

// TruncatedError indicates that a read required more bytes than remain in
// the current scope - the whole file for the record loop, a single record's
// payload for field decoding.
type TruncatedError struct {
	Field  string // field being decoded, empty for file-level reads
	Offset int    // absolute byte offset at which the read started
	Need   int
	Have   int
}

func (e *TruncatedError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("truncated input at 0x%X: field %q needs %d bytes, %d available", e.Offset, e.Field, e.Need, e.Have)
	}
	return fmt.Sprintf("truncated input at 0x%X: need %d bytes, %d available", e.Offset, e.Need, e.Have)
}

// InvalidHeaderError indicates the file does not start with a valid PDZ
// file header record.
type InvalidHeaderError struct {
	Offset     int
	RecordType uint16
	Reason     string
}

func (e *InvalidHeaderError) Error() string {
	return fmt.Sprintf("invalid PDZ header at 0x%X (record type %d): %s", e.Offset, e.RecordType, e.Reason)
}

// UnknownRecordError is returned only when ParseOptions.ErrorOnUnknownRecords
// is set; by default unrecognised records are retained raw and decoding
// continues.
type UnknownRecordError struct {
	RecordType uint16
	Offset     int
}

func (e *UnknownRecordError) Error() string {
	return fmt.Sprintf("unknown record type %d at 0x%X", e.RecordType, e.Offset)
}

// TrailingBytesError indicates a record's schema accounted for fewer bytes
// than its declared payload length. Attached to the decoded record as a
// warning - the payload is independently scoped, so later records are
// unaffected.
type TrailingBytesError struct {
	Record    string
	Offset    int
	Remaining int
}

func (e *TrailingBytesError) Error() string {
	return fmt.Sprintf("record %q: %d undecoded payload bytes at 0x%X", e.Record, e.Remaining, e.Offset)
}

// StringEncodingError indicates malformed UTF-16 data in a wide string
// field. The field is bound to its raw bytes and the error attached to the
// record as a warning.
type StringEncodingError struct {
	Field   string
	ByteLen int
	Reason  string
}

func (e *StringEncodingError) Error() string {
	return fmt.Sprintf("field %q: invalid wide string of %d bytes: %s", e.Field, e.ByteLen, e.Reason)
}

// SchemaRefError indicates a defect in the schema catalog itself: a group
// or array references a count field that is not decoded before it.
type SchemaRefError struct {
	Record     string
	Field      string
	CountField string
}

func (e *SchemaRefError) Error() string {
	return fmt.Sprintf("schema %q: field %q references undeclared count field %q", e.Record, e.Field, e.CountField)
}
