package pdz

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/Velocidex/ordereddict"
)

// MarshalJSON renders the decoded model keyed by record name, preserving
// record order and each record's schema field order. Record types that
// occur more than once (e.g. one XRF Spectrum per phase) render as an
// array - no occurrence is dropped. Opaque records render as their raw
// payload bytes.
func (f *File) MarshalJSON() ([]byte, error) {
	out := ordereddict.NewDict()
	for _, name := range f.RecordNames() {
		recs := f.byName[name]
		if len(recs) == 1 {
			out.Set(name, recordValue(recs[0]))
			continue
		}
		vals := make([]any, len(recs))
		for i, rec := range recs {
			vals[i] = recordValue(rec)
		}
		out.Set(name, vals)
	}
	return json.Marshal(out)
}

func recordValue(r *Record) any {
	if r.Fields != nil {
		return r.Fields
	}
	return r.Raw
}

// WriteJSON writes the indented JSON rendering of the model.
func (f *File) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(f)
}

// CSVOptions represents the options passed to WriteCSV
type CSVOptions struct {
	// RecordNames selects the records to export; default is XRF Spectrum
	RecordNames []string
	// IncludeChannelStartKeV adds a calculated channel energy column to the
	// channel table
	IncludeChannelStartKeV bool
}

// WriteCSV writes the selected records' fields as key/value rows, followed
// by a channel table when the selection includes spectrum data. Multiple
// selected records merge in order, later records overriding clashing keys.
func (f *File) WriteCSV(w io.Writer, options *CSVOptions) error {
	if options == nil {
		options = &CSVOptions{}
	}
	names := options.RecordNames
	if len(names) == 0 {
		names = []string{"XRF Spectrum"}
	}
	merged := ordereddict.NewDict()
	for _, name := range names {
		rec, ok := f.Record(name)
		if !ok {
			return fmt.Errorf("record %q not found", name)
		}
		if rec.Fields == nil {
			continue
		}
		for _, key := range rec.Fields.Keys() {
			v, _ := rec.Fields.Get(key)
			merged.Set(key, v)
		}
	}

	cw := csv.NewWriter(w)
	for _, key := range merged.Keys() {
		if key == "spectrum_data" {
			continue // handled as the channel table below
		}
		v, _ := merged.Get(key)
		if err := cw.Write([]string{key, cellValue(v)}); err != nil {
			return err
		}
	}
	if spectrum, ok := merged.Get("spectrum_data"); ok {
		if err := writeChannelTable(cw, merged, spectrum, options.IncludeChannelStartKeV); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeChannelTable(cw *csv.Writer, merged *ordereddict.Dict, spectrum any, withKeV bool) error {
	counts, ok := spectrum.([]uint32)
	if !ok {
		return fmt.Errorf("spectrum_data is %T, want []uint32", spectrum)
	}
	if !withKeV {
		if err := cw.Write([]string{"channel_number", "channel_count"}); err != nil {
			return err
		}
		for i, count := range counts {
			if err := cw.Write([]string{strconv.Itoa(i + 1), strconv.FormatUint(uint64(count), 10)}); err != nil {
				return err
			}
		}
		return nil
	}
	startKeV := lookupFloat(merged, "channel_start") / 1000
	kevPerChannel := lookupFloat(merged, "ev_per_channel") / 1000
	if err := cw.Write([]string{"channel_number", "channel_start_kev (calculated)", "channel_count"}); err != nil {
		return err
	}
	for i, count := range counts {
		kev := startKeV + float64(i)*kevPerChannel
		row := []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(kev, 'f', -1, 64),
			strconv.FormatUint(uint64(count), 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func lookupFloat(d *ordereddict.Dict, key string) float64 {
	if v, ok := d.Get(key); ok {
		if fv, ok := floatValue(v); ok {
			return fv
		}
	}
	return 0
}

func cellValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case SystemTime:
		return t.String()
	case []byte:
		return fmt.Sprintf("%d bytes", len(t))
	case []*ordereddict.Dict:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
	return fmt.Sprint(v)
}

// Images returns the embedded JPEG blocks from Image Details records, in
// file order.
func (f *File) Images() [][]byte {
	recs, ok := f.AllRecords("Image Details")
	if !ok {
		return nil
	}
	var result [][]byte
	for _, rec := range recs {
		images, ok := rec.Group("images")
		if !ok {
			continue
		}
		for _, img := range images {
			if v, ok := img.Get("image"); ok {
				if data, ok := v.([]byte); ok {
					result = append(result, data)
				}
			}
		}
	}
	return result
}

// Spectrum is one measurement phase's channel data with its energy
// calibration, lifted out of an XRF Spectrum record.
type Spectrum struct {
	PhaseNumber  int64
	EVPerChannel float64
	ChannelStart float64
	Acquired     SystemTime
	Counts       []uint32
}

// ChannelKeV returns the calculated energy of a zero-based channel index
// in keV.
func (s Spectrum) ChannelKeV(i int) float64 {
	return (s.ChannelStart + float64(i)*s.EVPerChannel) / 1000
}

// Spectra lifts every XRF Spectrum record into a Spectrum, in phase order
// as they appear in the file.
func (f *File) Spectra() []Spectrum {
	recs, ok := f.AllRecords("XRF Spectrum")
	if !ok {
		return nil
	}
	result := make([]Spectrum, 0, len(recs))
	for _, rec := range recs {
		if rec.Fields == nil {
			continue
		}
		var s Spectrum
		s.PhaseNumber, _ = rec.Int("phase_number")
		s.EVPerChannel, _ = rec.Float("ev_per_channel")
		s.ChannelStart, _ = rec.Float("channel_start")
		s.Acquired, _ = rec.Time("acquisition_date_time")
		if v, ok := rec.Fields.Get("spectrum_data"); ok {
			if counts, ok := v.([]uint32); ok {
				s.Counts = counts
			}
		}
		result = append(result, s)
	}
	return result
}
