package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/carbocation/pfx"
)

// stringList collects repeated occurrences of a flag into a slice, the
// same pattern the teacher's example/parallel main uses for repeated -bgen
// flags.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	var prefixes stringList
	flag.Var(&prefixes, "store", "Path prefix of a genotype store (.bcf/.csi/.pbf/.spl); repeatable")

	var groups stringList
	flag.Var(&groups, "group", "Comma-separated sample names for one AddGroup call; repeatable, max 8")

	region := flag.String("region", "", "Restrict output to one contig, optionally chrom:beg-end")
	bed := flag.String("bed", "", "Path to a tabix-indexed, bgzip-compressed BED file to filter by overlap")
	bedExclude := flag.Bool("bed-exclude", false, "Exclude (rather than keep) sites overlapping -bed")
	noGT := flag.Bool("no-gt", false, "Suppress FORMAT/sample columns")
	setAC := flag.Bool("set-ac", false, "Compute AN/AC and per-group AN/AC")
	flag.Parse()

	if len(prefixes) == 0 {
		log.Fatalln("at least one -store is required")
	}

	cfg, err := loadEnvConfig()
	if err != nil {
		log.Fatalln(pfx.Err(err))
	}

	if err := runQuery(prefixes, *region, *bed, *bedExclude, groups, cfg.MaxGroups, *noGT, *setAC, os.Stdout); err != nil {
		log.Fatalln(pfx.Err(err))
	}
}
