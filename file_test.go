package pdz

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	data := concat(
		v25HeaderRecord(uint32(InstrumentXRF)),
		spectrumRecord(t, 0, []uint32{1, 2, 3}),
		spectrumRecord(t, 1, []uint32{4, 5, 6}),
		gpsRecord(1, 48.8566, 2.3522, 35.0),
	)

	file, err := Parse(data, nil)
	require.NoError(t, err)
	assert.Equal(t, Version25, file.Version)
	assert.Equal(t, InstrumentXRF, file.Instrument)
	require.Len(t, file.Records, 4)
	assert.Empty(t, file.Warnings())
	assert.Equal(t, []string{"File Header", "XRF Spectrum", "GPS Details"}, file.RecordNames())

	gps, ok := file.Record("GPS Details")
	require.True(t, ok)
	lat, ok := gps.Float("latitude")
	require.True(t, ok)
	assert.Equal(t, 48.8566, lat)

	_, ok = file.Record("Image Details")
	assert.False(t, ok)
}

func TestParseHeaderOnly(t *testing.T) {
	file, err := Parse(v25HeaderRecord(uint32(InstrumentUnspecified)), nil)
	require.NoError(t, err)
	assert.Equal(t, Version25, file.Version)
	assert.Equal(t, InstrumentUnspecified, file.Instrument)
	require.Len(t, file.Records, 1)
	id, ok := file.Records[0].Str("file_type_id")
	require.True(t, ok)
	assert.Equal(t, "pdz25", id)
}

func TestParseMultiOccurrence(t *testing.T) {
	data := concat(
		v25HeaderRecord(uint32(InstrumentXRF)),
		spectrumRecord(t, 0, []uint32{1, 2, 3}),
		spectrumRecord(t, 1, []uint32{4, 5, 6}),
		spectrumRecord(t, 2, []uint32{7, 8, 9}),
	)

	file, err := Parse(data, nil)
	require.NoError(t, err)

	// one entry per occurrence, in file order
	all, ok := file.AllRecords("XRF Spectrum")
	require.True(t, ok)
	require.Len(t, all, 3)
	for i, rec := range all {
		phase, ok := rec.Uint("phase_number")
		require.True(t, ok)
		assert.Equal(t, uint64(i), phase)
	}

	// Record returns the first occurrence
	first, ok := file.Record("XRF Spectrum")
	require.True(t, ok)
	assert.Same(t, all[0], first)
}

func TestParseUnknownRecordType(t *testing.T) {
	opaque := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	data := concat(
		v25HeaderRecord(uint32(InstrumentXRF)),
		EncodeRecord(4242, opaque),
		gpsRecord(0, 0, 0, 0),
	)

	file, err := Parse(data, nil)
	require.NoError(t, err)
	require.Len(t, file.Records, 3)

	rec := file.Records[1]
	assert.Equal(t, uint16(4242), rec.Type)
	assert.Equal(t, "Unknown Record Type 4242", rec.Name)
	assert.False(t, rec.Known())
	assert.Equal(t, opaque, rec.Raw)
	assert.Nil(t, rec.Fields)

	// decoding continued past the unknown record
	_, ok := file.Record("GPS Details")
	assert.True(t, ok)
}

func TestParseErrorOnUnknownRecords(t *testing.T) {
	data := concat(
		v25HeaderRecord(uint32(InstrumentXRF)),
		EncodeRecord(4242, []byte{1, 2}),
	)

	file, err := Parse(data, &ParseOptions{ErrorOnUnknownRecords: true})
	var unknown *UnknownRecordError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, uint16(4242), unknown.RecordType)
	assert.Equal(t, 20, unknown.Offset) // right after the 20-byte header record
	require.NotNil(t, file)
	assert.Len(t, file.Records, 1)
}

func TestParseTruncatedFile(t *testing.T) {
	t.Run("MidPayload", func(t *testing.T) {
		data := concat(
			v25HeaderRecord(uint32(InstrumentXRF)),
			gpsRecord(1, 48.85, 2.35, 35.0),
		)
		file, err := Parse(data[:len(data)-5], nil)
		var trunc *TruncatedError
		require.ErrorAs(t, err, &trunc)
		// everything before the break is still there
		require.NotNil(t, file)
		require.Len(t, file.Records, 1)
		assert.Equal(t, "File Header", file.Records[0].Name)
		assert.Equal(t, InstrumentXRF, file.Instrument)
	})

	t.Run("MidRecordHeader", func(t *testing.T) {
		data := append(v25HeaderRecord(uint32(InstrumentXRF)), 0x03, 0x00, 0x0C)
		file, err := Parse(data, nil)
		var trunc *TruncatedError
		require.ErrorAs(t, err, &trunc)
		assert.Equal(t, "data_length", trunc.Field)
		require.NotNil(t, file)
		assert.Len(t, file.Records, 1)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := Parse(nil, nil)
		var trunc *TruncatedError
		require.ErrorAs(t, err, &trunc)
	})
}

func TestParseInvalidHeader(t *testing.T) {
	t.Run("BadVersionMarker", func(t *testing.T) {
		_, err := Parse([]byte{0x2A, 0x2A, 0, 0, 0, 0}, nil)
		var invalid *InvalidHeaderError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, uint16(0x2A2A), invalid.RecordType)
	})

	t.Run("OversizedHeader", func(t *testing.T) {
		// the v25 header payload is exactly 14 bytes; a padded one is a
		// file-identity failure, not a per-record warning
		var buf bytes.Buffer
		buf.Write(wide(fileTypeIDV25))
		buf.Write([]byte{1, 0, 0, 0})
		buf.Write([]byte{0xAA, 0xBB})
		_, err := Parse(EncodeRecord(fileHeaderTypeV25, buf.Bytes()), nil)
		var invalid *InvalidHeaderError
		require.ErrorAs(t, err, &invalid)
		assert.Contains(t, invalid.Error(), "16 bytes, want 14")
	})

	t.Run("UndersizedHeader", func(t *testing.T) {
		_, err := Parse(EncodeRecord(fileHeaderTypeV25, wide(fileTypeIDV25)), nil)
		var invalid *InvalidHeaderError
		require.ErrorAs(t, err, &invalid)
		assert.Contains(t, invalid.Error(), "10 bytes, want 14")
	})

	t.Run("WrongFileTypeID", func(t *testing.T) {
		var buf bytes.Buffer
		buf.Write(wide("pdz26"))
		buf.Write([]byte{1, 0, 0, 0})
		// type 25 sniffs as v25, but the payload id must still be "pdz25"
		_, err := Parse(EncodeRecord(fileHeaderTypeV25, buf.Bytes()), nil)
		var invalid *InvalidHeaderError
		require.ErrorAs(t, err, &invalid)
		assert.Contains(t, invalid.Error(), "pdz26")
	})
}

func TestParseV24(t *testing.T) {
	legacyHeader := []byte{0x01, 0x02, 0x03, 0x04}
	data := concat(
		EncodeRecord(fileHeaderTypeV24, legacyHeader),
		EncodeRecord(42, []byte{9, 9}),
	)

	file, err := Parse(data, nil)
	require.NoError(t, err)
	assert.Equal(t, Version24, file.Version)
	assert.Equal(t, "pdz24", file.Version.String())
	assert.Equal(t, InstrumentUnknown, file.Instrument)
	require.Len(t, file.Records, 2)

	// the legacy header is catalogued by name but retained opaque
	header := file.Records[0]
	assert.Equal(t, "File Header", header.Name)
	assert.False(t, header.Known())
	assert.Nil(t, header.Fields)
	assert.Equal(t, legacyHeader, header.Raw)
}

func TestParseTrailingBytesOption(t *testing.T) {
	padded := EncodeRecord(138, append(gpsPayload(1, 1.0, 2.0, 3.0), 0xAA, 0xBB))
	data := concat(
		v25HeaderRecord(uint32(InstrumentXRF)),
		padded,
		EncodeRecord(139, concat(
			[]byte{2, 0, 0, 0},
			[]byte{10, 0, 0, 0}, wide("Alloy"),
			[]byte{8, 0, 0, 0}, wide("S-42"),
		)),
	)

	t.Run("DefaultWarns", func(t *testing.T) {
		file, err := Parse(data, nil)
		require.NoError(t, err)
		warnings := file.Warnings()
		require.Len(t, warnings, 1)
		var trailing *TrailingBytesError
		require.ErrorAs(t, warnings[0], &trailing)
		assert.Equal(t, 2, trailing.Remaining)

		// the declared length keeps the stream synchronized past the padding
		misc, ok := file.Record("Miscellaneous Information")
		require.True(t, ok)
		id, _ := misc.Str("sample_id")
		assert.Equal(t, "S-42", id)
	})

	t.Run("Promoted", func(t *testing.T) {
		file, err := Parse(data, &ParseOptions{ErrorOnTrailingBytes: true})
		var trailing *TrailingBytesError
		require.ErrorAs(t, err, &trailing)
		require.NotNil(t, file)
		assert.Len(t, file.Records, 1)
	})
}

func TestParseShortPayloadIsIsolated(t *testing.T) {
	// a declared length shorter than the schema needs breaks only that
	// record, not the file
	short := EncodeRecord(138, gpsPayload(1, 48.85, 2.35, 35.0)[:10])
	data := concat(
		v25HeaderRecord(uint32(InstrumentXRF)),
		short,
		spectrumRecord(t, 0, []uint32{1, 2, 3}),
	)

	file, err := Parse(data, nil)
	require.NoError(t, err)
	require.Len(t, file.Records, 3)

	gps := file.Records[1]
	require.Len(t, gps.Warnings, 1)
	var trunc *TruncatedError
	require.ErrorAs(t, gps.Warnings[0], &trunc)
	assert.Equal(t, "latitude", trunc.Field)
	// fields decoded before the break are kept
	valid, ok := gps.Int("gps_valid")
	require.True(t, ok)
	assert.Equal(t, int64(1), valid)

	spectrum, ok := file.Record("XRF Spectrum")
	require.True(t, ok)
	assert.Empty(t, spectrum.Warnings)
}

func TestParseReader(t *testing.T) {
	data := concat(
		v25HeaderRecord(uint32(InstrumentLIBS)),
		gpsRecord(1, -33.86, 151.2, 19.0),
	)
	file, err := ParseReader(bytes.NewReader(data), nil)
	require.NoError(t, err)
	assert.Equal(t, InstrumentLIBS, file.Instrument)
	assert.Len(t, file.Records, 2)
}
