package gtstore

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// testSite is the minimal description needed to build one fixture site
// record: a REF/ALT pair, its 0-based position, and its two genotype
// bit-planes (one bit per haplotype column, up to 2*len(sampleNames)
// entries; columns not listed are written as 0).
type testSite struct {
	RID     int
	Pos     int
	RLen    int
	Alleles []string
	Plane0  []byte
	Plane1  []byte
}

// buildStore writes a complete four-artifact fixture under t.TempDir() and
// returns its path prefix.
func buildStore(t *testing.T, contigs []string, sampleNames []string, sites []testSite) string {
	t.Helper()

	dir := t.TempDir()
	prefix := filepath.Join(dir, "fixture")

	hdr := &Header{}
	for _, c := range contigs {
		hdr.Contigs = append(hdr.Contigs, ContigInfo{Name: c, Length: 1 << 30})
	}

	// .bcf
	bcfPath := prefix + ".bcf"
	bcfFile, err := os.Create(bcfPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := writeLengthPrefixed(bcfFile, encodeHeader(hdr)); err != nil {
		t.Fatal(err)
	}
	headerBytes, err := bcfFile.Seek(0, 1)
	if err != nil {
		t.Fatal(err)
	}

	csiPath := prefix + ".csi"
	idx, err := openCoordIndex(csiPath)
	if err != nil {
		t.Fatal(err)
	}

	offset := headerBytes
	for rowID, ts := range sites {
		alleles := make([]Allele, len(ts.Alleles))
		for i, a := range ts.Alleles {
			alleles[i] = Allele(a)
		}
		s := &Site{
			RID:     ts.RID,
			Pos:     ts.Pos,
			RLen:    ts.RLen,
			Alleles: alleles,
			Info:    []InfoValue{{Key: rowInfoKey, Int: int64(rowID), IsInt: true}},
		}
		raw := encodeSite(s)
		var buf bytes.Buffer
		if err := writeBCFBlock(&buf, raw); err != nil {
			t.Fatal(err)
		}
		if _, err := bcfFile.Write(buf.Bytes()); err != nil {
			t.Fatal(err)
		}
		if err := idx.append(ts.RID, ts.Pos, ts.Pos+ts.RLen, int64(rowID), offset); err != nil {
			t.Fatal(err)
		}
		offset += int64(buf.Len())
	}
	if err := bcfFile.Close(); err != nil {
		t.Fatal(err)
	}
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}

	// .pbf
	nSamples := len(sampleNames)
	pbfPath := prefix + ".pbf"
	pbfFile, err := os.Create(pbfPath)
	if err != nil {
		t.Fatal(err)
	}
	var pbfHdr [8]byte
	binary.LittleEndian.PutUint32(pbfHdr[0:4], uint32(nSamples))
	binary.LittleEndian.PutUint32(pbfHdr[4:8], uint32(len(sites)))
	if _, err := pbfFile.Write(pbfHdr[:]); err != nil {
		t.Fatal(err)
	}

	packedLen := (2*nSamples + 7) / 8
	rowOffsets := make([]int64, len(sites))
	off := int64(8 + 8*len(sites))
	var body bytes.Buffer
	for i, ts := range sites {
		rowOffsets[i] = off
		plane0 := make([]byte, packedLen)
		plane1 := make([]byte, packedLen)
		for col, v := range ts.Plane0 {
			setBit(plane0, col, v)
		}
		for col, v := range ts.Plane1 {
			setBit(plane1, col, v)
		}
		var buf bytes.Buffer
		if err := writePBFBlock(&buf, append(append([]byte(nil), plane0...), plane1...)); err != nil {
			t.Fatal(err)
		}
		body.Write(buf.Bytes())
		off += int64(buf.Len())
	}

	offTbl := make([]byte, 8*len(sites))
	for i, o := range rowOffsets {
		binary.LittleEndian.PutUint64(offTbl[i*8:], uint64(o))
	}
	if _, err := pbfFile.Write(offTbl); err != nil {
		t.Fatal(err)
	}
	if _, err := pbfFile.Write(body.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := pbfFile.Close(); err != nil {
		t.Fatal(err)
	}

	// .spl
	splPath := prefix + ".spl"
	var splBuf bytes.Buffer
	for _, n := range sampleNames {
		splBuf.WriteString(n)
		splBuf.WriteByte('\n')
	}
	if err := os.WriteFile(splPath, splBuf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	return prefix
}
