package pdz

import (
	"errors"
	"fmt"
	"io"
)

// ParseOptions represents the parsing options passed to Parse
type ParseOptions struct {
	// ErrorOnUnknownRecords determines whether record types absent from the
	// catalog cause a parse error
	//
	// the default is false - unknown records are retained as opaque bytes
	// and decoding continues
	ErrorOnUnknownRecords bool
	// ErrorOnTrailingBytes promotes per-record trailing byte warnings to
	// parse errors
	ErrorOnTrailingBytes bool
}

// File represents the contents of a decoded PDZ file
type File struct {
	// Version is the format version (pdz24 or pdz25)
	Version Version
	// Instrument is the instrument identifier from the file header record
	Instrument InstrumentType
	// Records is every record in file order, the file header included
	Records []*Record
	byName  map[string][]*Record
}

// Record retrieves the first record with the given name.
func (f *File) Record(name string) (*Record, bool) {
	recs := f.byName[name]
	if len(recs) == 0 {
		return nil, false
	}
	return recs[0], true
}

// AllRecords retrieves every record with the given name, in file order.
// Multi-occurrence record types (e.g. one XRF Spectrum per measurement
// phase) yield one entry per occurrence - nothing is ever overwritten.
func (f *File) AllRecords(name string) ([]*Record, bool) {
	recs, ok := f.byName[name]
	return recs, ok
}

// RecordNames returns the distinct record names in first-occurrence order.
func (f *File) RecordNames() []string {
	names := make([]string, 0, len(f.byName))
	seen := make(map[string]bool, len(f.byName))
	for _, rec := range f.Records {
		if !seen[rec.Name] {
			seen[rec.Name] = true
			names = append(names, rec.Name)
		}
	}
	return names
}

// Warnings collects all per-record warnings in file order.
func (f *File) Warnings() []error {
	var result []error
	for _, rec := range f.Records {
		result = append(result, rec.Warnings...)
	}
	return result
}

// Parse decodes a complete PDZ file from the supplied buffer with the
// supplied ParseOptions (nil means defaults).
//
// The returned File references the buffer - callers must not mutate it
// afterwards. On error the partially decoded File is still returned, so a
// truncated file yields every record before the break.
func Parse(data []byte, options *ParseOptions) (*File, error) {
	if options == nil {
		options = &ParseOptions{}
	}
	version, err := sniffVersion(data)
	if err != nil {
		return nil, err
	}
	result := &File{Version: version, byName: map[string][]*Record{}}
	cur := newCursor(data, 0)
	for cur.remaining() > 0 {
		headerOffset := cur.offset()
		recordType, err := cur.u16("record_type")
		if err != nil {
			return result, err
		}
		dataLength, err := cur.u32("data_length")
		if err != nil {
			return result, err
		}
		payload, err := cur.take(int(dataLength), "payload")
		if err != nil {
			return result, err
		}

		schema, known := schemaFor(version, recordType)
		if len(result.Records) == 0 {
			want := uint16(fileHeaderTypeV25)
			if version == Version24 {
				want = fileHeaderTypeV24
			}
			if recordType != want {
				return result, &InvalidHeaderError{
					Offset:     headerOffset,
					RecordType: recordType,
					Reason:     fmt.Sprintf("first record must be the %s file header (type %d)", version, want),
				}
			}
		}
		name := schema.Name
		if !known {
			if options.ErrorOnUnknownRecords {
				return result, &UnknownRecordError{RecordType: recordType, Offset: headerOffset}
			}
			name = fmt.Sprintf("Unknown Record Type %d", recordType)
		}

		rec := &Record{Type: recordType, Name: name, Raw: payload}
		if known && !schema.opaque() {
			pcur := newCursor(payload, headerOffset+recordHeaderSize)
			fields, warnings, err := decodePayload(schema, pcur)
			var trunc *TruncatedError
			switch {
			case err == nil:
			case errors.As(err, &trunc):
				// the payload is independently scoped, so a schema overrun
				// is isolated to this record
				warnings = append(warnings, trunc)
			default:
				return result, err
			}
			rec.Fields = fields
			rec.Warnings = warnings
			if options.ErrorOnTrailingBytes {
				for _, w := range warnings {
					var tb *TrailingBytesError
					if errors.As(w, &tb) {
						return result, tb
					}
				}
			}
		}

		if len(result.Records) == 0 {
			instrument, err := checkFileHeader(version, rec)
			if err != nil {
				return result, err
			}
			result.Instrument = instrument
		}
		result.Records = append(result.Records, rec)
		result.byName[rec.Name] = append(result.byName[rec.Name], rec)
	}
	return result, nil
}

// ParseReader reads the remainder of r into memory and parses it. File I/O
// stays with the caller; decoding itself is a pure in-memory transformation.
func ParseReader(r io.Reader, options *ParseOptions) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data, options)
}
