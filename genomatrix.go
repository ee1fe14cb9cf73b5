package gtstore

import (
	"encoding/binary"
	"os"

	"github.com/carbocation/pfx"
)

// genotypeMatrix is the .pbf artifact: a row-per-site, two-plane bit
// matrix. Row N's bit-plane pair is read with the same MSB-first bit
// packing the teacher's bitreader.go uses to decode BGEN probability
// blocks, but packed two bits (one per plane) per haplotype column rather
// than BGEN's variable-width probability codes.
type genotypeMatrix struct {
	file       *os.File
	nHapCols   int // 2*S
	rowOffsets []int64

	selected []int // 2*|samples| haplotype columns chosen by subsetColumns; nil = all

	// scratch, reused across reads per spec.md §5 ("never shrink below the
	// current record's needs")
	plane0 []byte
	plane1 []byte
}

func openGenotypeMatrix(path string) (*genotypeMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	var hdr [8]byte
	if _, err := f.ReadAt(hdr[:], 0); err != nil {
		f.Close()
		return nil, &FormatError{Context: "reading .pbf header", Cause: pfx.Err(err)}
	}
	nSamples := binary.LittleEndian.Uint32(hdr[0:4])
	nRows := binary.LittleEndian.Uint32(hdr[4:8])

	offsets := make([]int64, nRows)
	if nRows > 0 {
		tbl := make([]byte, 8*int(nRows))
		if _, err := f.ReadAt(tbl, 8); err != nil {
			f.Close()
			return nil, &FormatError{Context: "reading .pbf row-offset table", Cause: pfx.Err(err)}
		}
		for i := range offsets {
			offsets[i] = int64(binary.LittleEndian.Uint64(tbl[i*8:]))
		}
	}

	return &genotypeMatrix{
		file:       f,
		nHapCols:   2 * int(nSamples),
		rowOffsets: offsets,
	}, nil
}

func (m *genotypeMatrix) Close() error {
	if m.file == nil {
		return nil
	}
	return m.file.Close()
}

// subsetColumns restricts future reads to exactly these haplotype columns,
// in the given order, per spec.md §4.2's column-selection computation.
func (m *genotypeMatrix) subsetColumns(cols []int) {
	m.selected = cols
}

// readRow seeks to rowID and decodes the two bit-planes, restricted to the
// selected columns (or all 2*S columns if subsetColumns was never called).
// Returned slices are owned by m and reused on the next call, per spec.md
// §5's scratch-buffer reuse contract.
func (m *genotypeMatrix) readRow(rowID int64) (a0, a1 []byte, err error) {
	if rowID < 0 || int(rowID) >= len(m.rowOffsets) {
		return nil, nil, &FormatError{Context: "genotype matrix row out of range"}
	}

	raw, _, err := readPBFBlock(m.file, m.rowOffsets[rowID])
	if err != nil {
		return nil, nil, &UnderlyingIO{Cause: err}
	}

	packedLen := (m.nHapCols + 7) / 8
	if len(raw) != 2*packedLen {
		return nil, nil, &FormatError{Context: "corrupt .pbf row: unexpected block length"}
	}
	planeBytes := [2][]byte{raw[:packedLen], raw[packedLen:]}

	cols := m.selected
	if cols == nil {
		cols = make([]int, m.nHapCols)
		for i := range cols {
			cols[i] = i
		}
	}

	m.plane0 = growTo(m.plane0, len(cols))
	m.plane1 = growTo(m.plane1, len(cols))
	for i, col := range cols {
		m.plane0[i] = getBit(planeBytes[0], col)
		m.plane1[i] = getBit(planeBytes[1], col)
	}

	return m.plane0[:len(cols)], m.plane1[:len(cols)], nil
}

func growTo(buf []byte, n int) []byte {
	if cap(buf) < n {
		return make([]byte, n, n*2)
	}
	return buf[:n]
}

// getBit extracts bit `col` from a packed, MSB-first bitset, matching the
// teacher's bitReader.ReadBit convention (bgen/bitreader.go).
func getBit(data []byte, col int) byte {
	byteIdx := col / 8
	bitOff := col % 8
	if data[byteIdx]&(0x80>>uint(bitOff)) != 0 {
		return 1
	}
	return 0
}

// setBit is the writer-side counterpart of getBit, used by test fixtures
// that build .pbf rows in memory.
func setBit(data []byte, col int, v byte) {
	byteIdx := col / 8
	bitOff := col % 8
	if v != 0 {
		data[byteIdx] |= 0x80 >> uint(bitOff)
	} else {
		data[byteIdx] &^= 0x80 >> uint(bitOff)
	}
}
