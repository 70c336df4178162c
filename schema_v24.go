package pdz

// recordsV24 is the legacy pdz24 catalog. The format predates the
// self-describing record layout documented for pdz25 and its payloads
// remain largely undocumented, so the catalog names the leading record and
// retains payloads opaque. The shared engine, header contract (leading
// record type 257) and version plumbing are fully wired - decoding real
// v24 layouts is a catalog addition, not an engine change.
var recordsV24 = map[uint16]RecordSchema{
	257: {Name: "File Header"},
}
