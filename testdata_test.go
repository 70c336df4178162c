package pdz

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/Velocidex/ordereddict"
	"github.com/stretchr/testify/require"
)

// wide returns the UTF-16LE wire bytes for s.
func wide(s string) []byte {
	return encodeUTF16LE(s)
}

// v25HeaderRecord builds the 20-byte File Header record (6-byte header +
// 14-byte payload).
func v25HeaderRecord(instrument uint32) []byte {
	var buf bytes.Buffer
	buf.Write(wide(fileTypeIDV25))
	_ = binary.Write(&buf, binary.LittleEndian, instrument)
	return EncodeRecord(fileHeaderTypeV25, buf.Bytes())
}

// gpsPayload is the 24-byte GPS Details payload.
func gpsPayload(valid int32, lat, lon float64, alt float32) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, valid)
	_ = binary.Write(&buf, binary.LittleEndian, lat)
	_ = binary.Write(&buf, binary.LittleEndian, lon)
	_ = binary.Write(&buf, binary.LittleEndian, alt)
	return buf.Bytes()
}

func gpsRecord(valid int32, lat, lon float64, alt float32) []byte {
	return EncodeRecord(138, gpsPayload(valid, lat, lon, alt))
}

// spectrumFields binds every field of the XRF Spectrum schema, in schema
// order, so the payload can be built through the encoder.
func spectrumFields(phase uint32, counts []uint32) *ordereddict.Dict {
	filters := make([]*ordereddict.Dict, 3)
	for i := range filters {
		filters[i] = ordereddict.NewDict().
			Set("filter_element", int16(13+i)).
			Set("filter_thickness", int16(100*i))
	}
	return ordereddict.NewDict().
		Set("phase_number", phase).
		Set("raw_counts", uint32(120000)).
		Set("valid_counts", uint32(110000)).
		Set("valid_counts_in_range", uint32(100000)).
		Set("reset_counts", uint32(12)).
		Set("time_since_trigger", float32(30.5)).
		Set("total_packet_time", float32(30.0)).
		Set("total_dead", float32(1.25)).
		Set("total_reset", float32(0.5)).
		Set("total_live", float32(28.25)).
		Set("tube_voltage", float32(40.0)).
		Set("tube_current", float32(10.6)).
		Set("filters", filters).
		Set("filter_wheel_number", int16(2)).
		Set("detector_temp", float32(-27.0)).
		Set("ambient_temp", float32(91.4)).
		Set("vacuum", int32(0)).
		Set("ev_per_channel", float32(20.0)).
		Set("gain_drift_algorithm", int16(1)).
		Set("channel_start", float32(0)).
		Set("acquisition_date_time", SystemTime{Year: 2024, Month: 3, DayOfWeek: 5, Day: 1, Hour: 13, Minute: 5, Second: 9, Millisecond: 250}).
		Set("atmospheric_pressure", float32(1013.25)).
		Set("channels", int16(len(counts))).
		Set("nose_temp", int16(30)).
		Set("environment", int16(0)).
		Set("illumination", "Off").
		Set("normal_packet_start", int16(0)).
		Set("spectrum_data", counts)
}

func spectrumRecord(t *testing.T, phase uint32, counts []uint32) []byte {
	t.Helper()
	payload, err := EncodePayload(recordsV25[3], spectrumFields(phase, counts))
	require.NoError(t, err)
	return EncodeRecord(3, payload)
}

// concat joins framed records into one file buffer.
func concat(records ...[]byte) []byte {
	var buf bytes.Buffer
	for _, r := range records {
		buf.Write(r)
	}
	return buf.Bytes()
}
