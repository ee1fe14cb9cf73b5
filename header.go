package gtstore

// ContigInfo is one ##contig declaration.
type ContigInfo struct {
	Name   string
	Length int64
}

// FieldDef describes one INFO or FORMAT schema entry, as would be declared
// in a ##INFO or ##FORMAT header line.
type FieldDef struct {
	ID          string
	Number      string // "1", "A", "G", "." etc, per the textual-record convention
	Type        string // "Integer", "Float", "String", "Flag"
	Description string
}

// Header is the variant header read fully into memory at Store.Open, per
// spec.md §4.1.
type Header struct {
	Contigs     []ContigInfo
	Infos       []FieldDef
	Formats     []FieldDef
	SampleNames []string
}

// ContigIndex returns the contig index for name, or -1 if unknown.
func (h *Header) ContigIndex(name string) int {
	for i, c := range h.Contigs {
		if c.Name == name {
			return i
		}
	}
	return -1
}
