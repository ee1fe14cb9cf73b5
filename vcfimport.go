package gtstore

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"

	"github.com/carbocation/pfx"
	"github.com/carbocation/vcfgo"
)

// SampleNamesFromVCFHeader reads only as much of path as needed to decode
// the VCF header and returns its sample names, in column order, for
// seeding a new .spl sample list. Gzip-compressed VCFs are detected by
// attempting a gzip reader first and falling back to the raw stream.
func SampleNamesFromVCFHeader(path string) ([]string, error) {
	fraw, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer fraw.Close()

	var r io.Reader
	gz, err := gzip.NewReader(fraw)
	if err != nil {
		if _, serr := fraw.Seek(0, io.SeekStart); serr != nil {
			return nil, pfx.Err(serr)
		}
		r = fraw
	} else {
		defer gz.Close()
		r = gz
	}

	vcfReader, err := vcfgo.NewReader(bufio.NewReader(r), false)
	if err != nil {
		return nil, pfx.Err(err)
	}

	names := make([]string, len(vcfReader.Header.SampleNames))
	copy(names, vcfReader.Header.SampleNames)
	return names, nil
}
