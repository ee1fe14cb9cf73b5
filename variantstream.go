package gtstore

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/carbocation/pfx"
)

// variantStream is the .bcf artifact: a sequence of site records, header
// first, each record zstd-compressed as its own length-prefixed block (see
// blockio.go). Field encoding follows the teacher's
// variantreader.go convention exactly: every variable-length field is a
// little-endian length prefix followed by that many raw bytes.
type variantStream struct {
	file        *os.File
	headerBytes int64 // byte length of the encoded header, i.e. offset of record 0
}

func openVariantStream(path string) (*variantStream, *Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, pfx.Err(err)
	}

	hdr, n, err := decodeHeader(f)
	if err != nil {
		f.Close()
		return nil, nil, &FormatError{Context: "decoding .bcf header", Cause: err}
	}

	return &variantStream{file: f, headerBytes: n}, hdr, nil
}

func (v *variantStream) Close() error {
	if v.file == nil {
		return nil
	}
	return v.file.Close()
}

// readAt decodes the site record whose block begins at offset, returning
// the offset of the following block.
func (v *variantStream) readAt(offset int64) (*Site, int64, error) {
	raw, next, err := readBCFBlock(v.file, offset)
	if err != nil {
		if err == io.EOF {
			return nil, 0, io.EOF
		}
		return nil, 0, &UnderlyingIO{Cause: err}
	}
	site, err := decodeSite(raw)
	if err != nil {
		return nil, 0, &FormatError{Context: "decoding site record", Cause: err}
	}
	return site, next, nil
}

// --- wire encoding ---

func writeString(w io.Writer, s string) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func appendString(buf []byte, s string) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, s...)
}

func readString(r *byteCursor) (string, error) {
	n, err := r.uint32()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// byteCursor is a tiny sequential reader over an in-memory buffer, playing
// the same role as the teacher's vr.buffer + readNBytesAtOffset pairing,
// but over bytes already decompressed rather than a file.
type byteCursor struct {
	buf []byte
	pos int
}

func (c *byteCursor) bytes(n int) ([]byte, error) {
	if c.pos+n > len(c.buf) {
		return nil, io.ErrUnexpectedEOF
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *byteCursor) uint32() (uint32, error) {
	b, err := c.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *byteCursor) int32() (int32, error) {
	u, err := c.uint32()
	return int32(u), err
}

func (c *byteCursor) uint64() (uint64, error) {
	b, err := c.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *byteCursor) byte() (byte, error) {
	b, err := c.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func decodeHeader(r io.ReaderAt) (*Header, int64, error) {
	raw, next, err := readLengthPrefixed(r, 0)
	if err != nil {
		return nil, 0, err
	}
	c := &byteCursor{buf: raw}

	h := &Header{}
	nContigs, err := c.uint32()
	if err != nil {
		return nil, 0, err
	}
	for i := uint32(0); i < nContigs; i++ {
		name, err := readString(c)
		if err != nil {
			return nil, 0, err
		}
		length, err := c.uint64()
		if err != nil {
			return nil, 0, err
		}
		h.Contigs = append(h.Contigs, ContigInfo{Name: name, Length: int64(length)})
	}

	readFieldDefs := func() ([]FieldDef, error) {
		n, err := c.uint32()
		if err != nil {
			return nil, err
		}
		defs := make([]FieldDef, 0, n)
		for i := uint32(0); i < n; i++ {
			id, err := readString(c)
			if err != nil {
				return nil, err
			}
			num, err := readString(c)
			if err != nil {
				return nil, err
			}
			typ, err := readString(c)
			if err != nil {
				return nil, err
			}
			desc, err := readString(c)
			if err != nil {
				return nil, err
			}
			defs = append(defs, FieldDef{ID: id, Number: num, Type: typ, Description: desc})
		}
		return defs, nil
	}

	if h.Infos, err = readFieldDefs(); err != nil {
		return nil, 0, err
	}
	if h.Formats, err = readFieldDefs(); err != nil {
		return nil, 0, err
	}

	return h, next, nil
}

func encodeHeader(h *Header) []byte {
	var buf []byte
	var n [4]byte

	binary.LittleEndian.PutUint32(n[:], uint32(len(h.Contigs)))
	buf = append(buf, n[:]...)
	for _, c := range h.Contigs {
		buf = appendString(buf, c.Name)
		var lenBuf [8]byte
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(c.Length))
		buf = append(buf, lenBuf[:]...)
	}

	appendFieldDefs := func(defs []FieldDef) {
		binary.LittleEndian.PutUint32(n[:], uint32(len(defs)))
		buf = append(buf, n[:]...)
		for _, d := range defs {
			buf = appendString(buf, d.ID)
			buf = appendString(buf, d.Number)
			buf = appendString(buf, d.Type)
			buf = appendString(buf, d.Description)
		}
	}
	appendFieldDefs(h.Infos)
	appendFieldDefs(h.Formats)

	return buf
}

func decodeSite(raw []byte) (*Site, error) {
	c := &byteCursor{buf: raw}
	s := &Site{}

	rid, err := c.int32()
	if err != nil {
		return nil, err
	}
	s.RID = int(rid)

	pos, err := c.int32()
	if err != nil {
		return nil, err
	}
	s.Pos = int(pos)

	rlen, err := c.int32()
	if err != nil {
		return nil, err
	}
	s.RLen = int(rlen)

	nAlleles, err := c.uint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nAlleles; i++ {
		a, err := readString(c)
		if err != nil {
			return nil, err
		}
		s.Alleles = append(s.Alleles, Allele(a))
	}

	nInfo, err := c.uint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nInfo; i++ {
		key, err := readString(c)
		if err != nil {
			return nil, err
		}
		isInt, err := c.byte()
		if err != nil {
			return nil, err
		}
		if isInt == 1 {
			v, err := c.uint64()
			if err != nil {
				return nil, err
			}
			s.Info = append(s.Info, InfoValue{Key: key, Int: int64(v), IsInt: true})
		} else {
			v, err := readString(c)
			if err != nil {
				return nil, err
			}
			s.Info = append(s.Info, InfoValue{Key: key, RawString: v})
		}
	}

	if rowID, ok := s.InfoRowID(); ok {
		s.RowID = rowID
	} else {
		s.RowID = -1
	}

	return s, nil
}

func encodeSite(s *Site) []byte {
	var buf []byte
	var n32 [4]byte

	binary.LittleEndian.PutUint32(n32[:], uint32(int32(s.RID)))
	buf = append(buf, n32[:]...)
	binary.LittleEndian.PutUint32(n32[:], uint32(int32(s.Pos)))
	buf = append(buf, n32[:]...)
	binary.LittleEndian.PutUint32(n32[:], uint32(int32(s.RLen)))
	buf = append(buf, n32[:]...)

	binary.LittleEndian.PutUint32(n32[:], uint32(len(s.Alleles)))
	buf = append(buf, n32[:]...)
	for _, a := range s.Alleles {
		buf = appendString(buf, string(a))
	}

	binary.LittleEndian.PutUint32(n32[:], uint32(len(s.Info)))
	buf = append(buf, n32[:]...)
	for _, f := range s.Info {
		buf = appendString(buf, f.Key)
		if f.IsInt {
			buf = append(buf, 1)
			var n64 [8]byte
			binary.LittleEndian.PutUint64(n64[:], uint64(f.Int))
			buf = append(buf, n64[:]...)
		} else {
			buf = append(buf, 0)
			buf = appendString(buf, f.RawString)
		}
	}

	return buf
}
