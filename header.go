package pdz

import (
	"encoding/binary"
	"fmt"
)

// Version is the PDZ format version, established by the first record's type.
type Version uint16

const (
	Version24 Version = 24
	Version25 Version = 25
)

func (v Version) String() string {
	return fmt.Sprintf("pdz%d", uint16(v))
}

// InstrumentType is the instrument identifier carried by the pdz25 file
// header record. pdz24 headers don't carry one, so v24 files report
// InstrumentUnknown.
type InstrumentType uint32

const (
	InstrumentUnknown     InstrumentType = 0
	InstrumentXRF         InstrumentType = 1
	InstrumentLIBS        InstrumentType = 2
	InstrumentUnspecified InstrumentType = 3
)

func (i InstrumentType) String() string {
	switch i {
	case InstrumentUnknown:
		return "Unknown"
	case InstrumentXRF:
		return "XRF"
	case InstrumentLIBS:
		return "LIBS"
	case InstrumentUnspecified:
		return "Unspecified"
	}
	return fmt.Sprintf("InstrumentType(%d)", uint32(i))
}

const (
	// every record starts with a 6-byte header: u16 type + u32 payload length
	recordHeaderSize = 6

	fileHeaderTypeV25 = 25
	fileHeaderTypeV24 = 257

	fileTypeIDV25 = "pdz25"

	// the v25 file header payload is fixed: wchar_t[5] id + u32 instrument
	v25HeaderPayloadSize = 14
)

// sniffVersion establishes the format version from the leading record type
// without consuming anything.
func sniffVersion(data []byte) (Version, error) {
	if len(data) < 2 {
		return 0, &TruncatedError{Offset: 0, Need: 2, Have: len(data)}
	}
	switch t := binary.LittleEndian.Uint16(data); t {
	case fileHeaderTypeV25:
		return Version25, nil
	case fileHeaderTypeV24:
		return Version24, nil
	default:
		return 0, &InvalidHeaderError{Offset: 0, RecordType: t, Reason: "not a recognised PDZ version marker"}
	}
}

// checkFileHeader validates the decoded first record against the version's
// header contract and extracts the instrument type.
func checkFileHeader(v Version, rec *Record) (InstrumentType, error) {
	switch v {
	case Version25:
		if len(rec.Raw) != v25HeaderPayloadSize {
			return InstrumentUnknown, &InvalidHeaderError{
				Offset:     0,
				RecordType: rec.Type,
				Reason:     fmt.Sprintf("header payload is %d bytes, want %d", len(rec.Raw), v25HeaderPayloadSize),
			}
		}
		id, ok := rec.Str("file_type_id")
		if !ok || id != fileTypeIDV25 {
			return InstrumentUnknown, &InvalidHeaderError{
				Offset:     0,
				RecordType: rec.Type,
				Reason:     fmt.Sprintf("file type id %q, want %q", id, fileTypeIDV25),
			}
		}
		instrument, _ := rec.Uint("instrument_type")
		return InstrumentType(instrument), nil
	case Version24:
		// the legacy header payload is retained opaque
		return InstrumentUnknown, nil
	}
	return InstrumentUnknown, &InvalidHeaderError{RecordType: rec.Type, Reason: "unsupported version"}
}
