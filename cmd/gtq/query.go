package main

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/carbocation/gtstore"
	"github.com/carbocation/gtstore/bedbix"
)

// runQuery opens one or more stores, builds a Reader per store, wires
// region/group/bed selections, and streams merged output records to w.
func runQuery(prefixes []string, region, bedPath string, bedExclude bool, groupSpecs []string, maxGroups int, noGT, setAC bool, w io.Writer) error {
	stores := make([]*gtstore.Store, 0, len(prefixes))
	defer func() {
		for _, s := range stores {
			s.Close()
		}
	}()

	readers := make([]*gtstore.Reader, 0, len(prefixes))
	for _, prefix := range prefixes {
		st, err := gtstore.Open(prefix)
		if err != nil {
			return err
		}
		stores = append(stores, st)
		readers = append(readers, gtstore.NewReader(st))
	}

	mr := gtstore.NewMultiReader(readers...)
	if maxGroups > 0 {
		if err := mr.SetGroupCap(maxGroups); err != nil {
			return err
		}
	}
	mr.SetNoGT(noGT)
	mr.SetComputeAC(setAC)

	for _, spec := range groupSpecs {
		if _, err := mr.AddGroup(gtstore.NamesGroup(splitCSV(spec)...)); err != nil {
			return err
		}
	}

	if region != "" {
		for _, r := range readers {
			if err := r.SetRegion(region); err != nil {
				return err
			}
		}
	}

	if bedPath != "" {
		ov, err := bedbix.Open(bedPath)
		if err != nil {
			return err
		}
		defer ov.Close()
		for _, r := range readers {
			r.SetBed(ov, bedExclude)
		}
	}

	if err := mr.Prepare(); err != nil {
		return err
	}

	n := 0
	for {
		rec, err := mr.ReadOne()
		if err == gtstore.EndOfStream {
			break
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%v\tAN=%d\tAC=%v\n",
			rec.Site.RID, rec.Site.Pos, rec.Site.Ref(), rec.Site.Alt(), rec.AN, rec.AC)
		n++
	}
	log.Printf("emitted %d records", n)
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
