package pdz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCountReferences(t *testing.T) {
	// every count-field reference in both catalogs must point at a field
	// declared before the group or array it governs
	for recordType, schema := range recordsV25 {
		assert.NoErrorf(t, schema.validate(), "v25 record type %d (%s)", recordType, schema.Name)
	}
	for recordType, schema := range recordsV24 {
		assert.NoErrorf(t, schema.validate(), "v24 record type %d (%s)", recordType, schema.Name)
	}
}

func TestCatalogContents(t *testing.T) {
	expected := map[uint16]string{
		25:   "File Header",
		1:    "XRF Instrument",
		2:    "XRF Assay Summary",
		3:    "XRF Spectrum",
		4:    "Raw XRF Spectrum Packet",
		5:    "Calculated Results",
		6:    "Calculated Results Details",
		7:    "Grade ID Results",
		8:    "Pass/Fail Results",
		9:    "User Custom Fields",
		10:   "Average Details",
		11:   "Filter Layers",
		137:  "Image Details",
		138:  "GPS Details",
		139:  "Miscellaneous Information",
		900:  "Trace Log",
		1001: "Libs Alloy Results",
		1002: "Libs Grade ID Results",
		1003: "Libs Alloy Method",
		1004: "Libs Alloy Sample",
	}
	assert.Len(t, recordsV25, len(expected))
	for recordType, name := range expected {
		schema, ok := schemaFor(Version25, recordType)
		require.Truef(t, ok, "record type %d missing", recordType)
		assert.Equal(t, name, schema.Name)
	}
}

func TestSchemaForUnknown(t *testing.T) {
	_, ok := schemaFor(Version25, 4242)
	assert.False(t, ok)
	_, ok = schemaFor(Version24, 3) // XRF Spectrum is not in the v24 catalog
	assert.False(t, ok)
}

func TestV24CatalogOpaque(t *testing.T) {
	schema, ok := schemaFor(Version24, fileHeaderTypeV24)
	require.True(t, ok)
	assert.Equal(t, "File Header", schema.Name)
	assert.True(t, schema.opaque())
}

func TestValidateRejectsForwardReference(t *testing.T) {
	schema := RecordSchema{Name: "Broken", Fields: []Field{
		groupBy("items", "count", u8("x")),
		u16("count"),
	}}
	var refErr *SchemaRefError
	require.ErrorAs(t, schema.validate(), &refErr)
	assert.Equal(t, "items", refErr.Field)
	assert.Equal(t, "count", refErr.CountField)
}

func TestValidateInnerScopeDoesNotLeak(t *testing.T) {
	// a count declared inside one group must not satisfy a later sibling
	schema := RecordSchema{Name: "Broken", Fields: []Field{
		group("first", 1, u16("inner_count")),
		groupBy("second", "inner_count", u8("x")),
	}}
	var refErr *SchemaRefError
	require.ErrorAs(t, schema.validate(), &refErr)
}

func TestScalarWidths(t *testing.T) {
	assert.Equal(t, 1, KindU8.width())
	assert.Equal(t, 2, KindI16.width())
	assert.Equal(t, 4, KindU32.width())
	assert.Equal(t, 4, KindF32.width())
	assert.Equal(t, 8, KindF64.width())
	assert.Equal(t, 0, KindString.width())
	assert.Equal(t, 0, KindGroup.width())
}
