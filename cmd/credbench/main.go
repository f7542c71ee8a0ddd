// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Credbench extracts Criterion benchmark results into a single table
// and derives comparisons between implementations.
//
// Usage:
//
//	credbench [flags]
//
// Credbench walks a result tree laid out as
//
//	root/<implementation>/<C>creds_<A>attrs/new/estimates.json
//
// and writes one row per measurement with the columns
// implementation, credential_count, attribute_count and mean_ms.
// Directories that do not fit the layout and unreadable reports are
// skipped with a warning. Two reports for the same measurement are a
// fatal error.
//
// The -pivot flag additionally writes a table with one row per
// (attribute count, credential count) and one column per
// implementation. The -ratio flag, which may be repeated, prints the
// ratio of two implementations' means at each credential count:
//
//	credbench -root target/criterion/mimc_abc \
//		-ratio multi_credential_batch_verify/non_private_with_batch \
//		-attrs 16
//
// The -sum flag, which may also be repeated, prints the summed means of
// several implementations, such as a show followed by a verify:
//
//	credbench -sum multi_credential_batch_show+multi_credential_batch_verify
//
// The -charts flag writes line charts of the table and of the ratio
// series into a directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/mimcabc/credbench/chart"
	"github.com/mimcabc/credbench/compare"
	"github.com/mimcabc/credbench/dataset"
	"github.com/mimcabc/credbench/extract"
	"github.com/mimcabc/credbench/gcsfs"
	"github.com/mimcabc/credbench/locate"
)

var (
	flagRoot      = flag.String("root", "target/criterion/mimc_abc", "read the result tree in `dir`")
	flagGCS       = flag.String("gcs", "", "read the result tree from `gs://bucket/prefix` instead of -root")
	flagAnonymous = flag.Bool("anonymous", false, "access -gcs without credentials")
	flagReport    = flag.String("report", locate.DefaultReportPath, "report `path` relative to each parameter directory")
	flagIn        = flag.String("i", "", "read a previously extracted table from CSV `file` instead of walking a tree")
	flagOut       = flag.String("o", "", "write the table as CSV to `file` (default stdout)")
	flagText      = flag.Bool("text", false, "print the table as aligned text instead of CSV")
	flagPivot     = flag.String("pivot", "", "write the pivot table as CSV to `file`")
	flagColumns   = flag.String("columns", "", "comma-separated `implementations` to include in the pivot (default all)")
	flagRatiosOut = flag.String("ratios", "", "write the -ratio series as CSV to `file`")
	flagAttrs     = flag.Int("attrs", 0, "restrict -ratio and -sum series to this attribute `count` (default all)")
	flagCharts    = flag.String("charts", "", "write charts into `dir`")
	flagFormat    = flag.String("format", "png", "chart `format` (png, svg, pdf)")
	flagParallel  = flag.Int("j", 8, "read up to `n` reports concurrently")
	flagVerbose   = flag.Bool("v", false, "log every skipped entry")
)

var (
	flagPairs pairList
	flagSums  sumList
)

func init() {
	flag.Var(&flagPairs, "ratio", "print the ratio series of `numerator/denominator` (may be repeated)")
	flag.Var(&flagSums, "sum", "print the combined mean of `impl+impl` (may be repeated)")
}

// pairList is a repeatable flag of implementation pairs.
type pairList []compare.Pair

func (l *pairList) String() string {
	var ss []string
	for _, p := range *l {
		ss = append(ss, p.String())
	}
	return strings.Join(ss, ",")
}

func (l *pairList) Set(s string) error {
	p, err := compare.ParsePair(s)
	if err != nil {
		return err
	}
	*l = append(*l, p)
	return nil
}

// sumList is a repeatable flag of implementation sets to add up.
type sumList [][]string

func (l *sumList) String() string {
	var ss []string
	for _, impls := range *l {
		ss = append(ss, strings.Join(impls, "+"))
	}
	return strings.Join(ss, ",")
}

func (l *sumList) Set(s string) error {
	impls, err := compare.ParseSum(s)
	if err != nil {
		return err
	}
	*l = append(*l, impls)
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: credbench [flags]\n\n")
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetPrefix("credbench: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 0 {
		flag.Usage()
	}

	ctx := context.Background()
	d, err := load(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, w := range d.Warnings() {
		log.Printf("warning: %v", w)
	}
	if d.Len() == 0 {
		log.Printf("no benchmark data found; have the benchmarks been run?")
	} else {
		log.Print(d.Summarize())
	}

	if err := writeTo(*flagOut, func(w io.Writer) error {
		if *flagText {
			return d.ToText(w, 3)
		}
		return d.WriteCSV(w)
	}); err != nil {
		log.Fatal(err)
	}

	if *flagPivot != "" {
		var cols []string
		if *flagColumns != "" {
			cols = strings.Split(*flagColumns, ",")
		}
		p := compare.NewPivot(d, cols...)
		if err := writeTo(*flagPivot, func(w io.Writer) error {
			if *flagText {
				return p.ToText(w, 3)
			}
			return p.WriteCSV(w)
		}); err != nil {
			log.Fatal(err)
		}
	}

	series := ratios(d)
	for _, s := range series {
		fmt.Fprintln(os.Stderr, s)
	}
	for _, s := range sums(d) {
		fmt.Fprintln(os.Stderr, s)
	}
	if *flagRatiosOut != "" {
		if err := writeTo(*flagRatiosOut, func(w io.Writer) error {
			return compare.WriteRatiosCSV(w, series)
		}); err != nil {
			log.Fatal(err)
		}
	}

	if *flagCharts != "" {
		if err := writeCharts(*flagCharts, *flagFormat, d, series); err != nil {
			log.Fatal(err)
		}
	}
}

// load produces the Dataset, either from a CSV file or by walking a
// result tree.
func load(ctx context.Context) (*dataset.Dataset, error) {
	if *flagIn != "" {
		f, err := os.Open(*flagIn)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return dataset.ReadCSV(f)
	}

	fsys, err := openTree(ctx)
	if err != nil {
		return nil, err
	}
	warn := func(format string, args ...interface{}) {
		if *flagVerbose {
			log.Printf(format, args...)
		}
	}
	w := &locate.Walker{FS: fsys, ReportPath: *flagReport, Warn: warn}
	res, err := extract.Run(ctx, w, extract.Options{Parallel: *flagParallel, Warn: warn})
	if err != nil {
		return nil, err
	}
	if n := len(res.Skipped); n > 0 && !*flagVerbose {
		log.Printf("skipped %d entries (use -v for details)", n)
	}
	return res.Dataset, nil
}

func openTree(ctx context.Context) (fs.FS, error) {
	if *flagGCS == "" {
		return os.DirFS(*flagRoot), nil
	}
	bucket, prefix, err := gcsfs.ParseURL(*flagGCS)
	if err != nil {
		return nil, err
	}
	var opts []option.ClientOption
	if *flagAnonymous {
		opts = append(opts, option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to Cloud Storage: %w", err)
	}
	return gcsfs.New(ctx, client.Bucket(bucket), prefix), nil
}

func ratios(d *dataset.Dataset) []*compare.Series {
	var out []*compare.Series
	for _, p := range flagPairs {
		if *flagAttrs != 0 {
			s := compare.Ratios(d, p, *flagAttrs)
			if len(s.Points) == 0 && len(s.Undefined) == 0 {
				log.Printf("no comparable measurements for %s at %d attributes", p, *flagAttrs)
				continue
			}
			out = append(out, s)
			continue
		}
		all := compare.AllRatios(d, p)
		if len(all) == 0 {
			log.Printf("no comparable measurements for %s", p)
		}
		out = append(out, all...)
	}
	return out
}

func sums(d *dataset.Dataset) []*compare.Combined {
	attrs := d.AttributeCounts()
	if *flagAttrs != 0 {
		attrs = []int{*flagAttrs}
	}
	var out []*compare.Combined
	for _, impls := range flagSums {
		for _, a := range attrs {
			if s := compare.Sum(d, a, impls...); len(s.Totals) > 0 {
				out = append(out, s)
			}
		}
	}
	return out
}

func writeCharts(dir, format string, d *dataset.Dataset, series []*compare.Series) error {
	if err := os.MkdirAll(dir, 0777); err != nil {
		return err
	}
	for _, a := range d.AttributeCounts() {
		p, err := chart.Scaling(d, a)
		if err != nil {
			return err
		}
		name := filepath.Join(dir, fmt.Sprintf("line_plot_attrs_%d.%s", a, format))
		if err := writeTo(name, func(w io.Writer) error { return chart.Write(w, p, format) }); err != nil {
			return err
		}
	}
	if len(series) > 0 {
		p, err := chart.Ratios(series)
		if err != nil {
			return err
		}
		name := filepath.Join(dir, "ratios."+format)
		if err := writeTo(name, func(w io.Writer) error { return chart.Write(w, p, format) }); err != nil {
			return err
		}
	}
	return nil
}

// writeTo calls write with the named file, or with stdout if name is
// empty or "-".
func writeTo(name string, write func(io.Writer) error) error {
	if name == "" || name == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return f.Close()
}
