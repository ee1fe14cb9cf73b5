package gtstore

import (
	"encoding/binary"
	"io"

	ddzstd "github.com/DataDog/zstd"
	"github.com/carbocation/pfx"
	kzstd "github.com/klauspost/compress/zstd"
)

// Block container format written by writeLengthPrefixed and read by
// readLengthPrefixed: a uint32
// little-endian compressed-length prefix followed by that many compressed
// bytes, the same "length-prefixed chunk" shape the teacher uses throughout
// variantreader.go for its own binary fields. Two independent codecs are
// wired in because the retrieved corpus shows both in active use:
// DataDog/zstd backs the .bcf variant-metadata stream (bgen/zstd.go's
// DecompressZStandard is the direct model), and klauspost/compress/zstd
// (declared but unused-in-excerpt in the teacher's own go.mod) backs the
// .pbf genotype matrix.

// writeBCFBlock compresses src with DataDog/zstd and writes it as one
// length-prefixed chunk.
func writeBCFBlock(w io.Writer, src []byte) error {
	compressed, err := ddzstd.Compress(nil, src)
	if err != nil {
		return pfx.Err(err)
	}
	return writeLengthPrefixed(w, compressed)
}

// readBCFBlock reads one length-prefixed chunk and decompresses it with
// DataDog/zstd, mirroring bgen's DecompressZStandard helper.
func readBCFBlock(r io.ReaderAt, offset int64) (data []byte, next int64, err error) {
	compressed, next, err := readLengthPrefixed(r, offset)
	if err != nil {
		return nil, 0, err
	}
	data, err = ddzstd.Decompress(nil, compressed)
	if err != nil {
		return nil, 0, pfx.Err(err)
	}
	return data, next, nil
}

var pbfEncoder, _ = kzstd.NewWriter(nil)
var pbfDecoder, _ = kzstd.NewReader(nil)

// writePBFBlock compresses src with klauspost/compress/zstd.
func writePBFBlock(w io.Writer, src []byte) error {
	compressed := pbfEncoder.EncodeAll(src, nil)
	return writeLengthPrefixed(w, compressed)
}

// readPBFBlock reads and decompresses one klauspost/compress/zstd block.
func readPBFBlock(r io.ReaderAt, offset int64) (data []byte, next int64, err error) {
	compressed, next, err := readLengthPrefixed(r, offset)
	if err != nil {
		return nil, 0, err
	}
	data, err = pbfDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, 0, pfx.Err(err)
	}
	return data, next, nil
}

func writeLengthPrefixed(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return pfx.Err(err)
	}
	if _, err := w.Write(payload); err != nil {
		return pfx.Err(err)
	}
	return nil
}

func readLengthPrefixed(r io.ReaderAt, offset int64) (payload []byte, next int64, err error) {
	var lenBuf [4]byte
	if _, err := r.ReadAt(lenBuf[:], offset); err != nil {
		if err == io.EOF {
			return nil, 0, io.EOF
		}
		return nil, 0, pfx.Err(err)
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	payload = make([]byte, n)
	if n > 0 {
		if _, err := r.ReadAt(payload, offset+4); err != nil {
			return nil, 0, pfx.Err(err)
		}
	}
	return payload, offset + 4 + int64(n), nil
}
