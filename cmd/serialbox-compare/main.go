// serialbox-compare compares the output savepoints of two serialbox
// stores field by field.
//
// Every savepoint of the first store whose name ends in "-out" is
// matched by name and metainfo in the second store. Given field files
// instead of databases, only that field is compared. The exit status is
// 1 when any description or value differs.
package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/robert-malhotra/go-serialbox/internal/cli"
	"github.com/robert-malhotra/go-serialbox/serialbox"
)

const outputSuffix = "-out"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		cli.Exit(err)
	}
}

type options struct {
	configPath string
	infoOnly   bool
	tolerance  float64
	region     cli.Region
}

func run(args []string, stdout io.Writer) error {
	opts := options{region: cli.FullRegion(), tolerance: -1}

	flagSet := pflag.NewFlagSet("serialbox-compare", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "config file (default $SERIALBOX_CONFIG)")
	flagSet.BoolVarP(&opts.infoOnly, "info", "q", false, "compare field descriptions only")
	flagSet.Float64VarP(&opts.tolerance, "tolerance", "t", -1, "largest accepted error (default compare.tolerance from config, 1e-12)")
	opts.region.AddFlags(flagSet, "compare")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return cli.Usage("%w", err)
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	rest := flagSet.Args()
	if len(rest) != 2 {
		printHelp(flagSet)
		return cli.Usage("expected two field files or two databases")
	}
	loc1, err := cli.SplitPath(rest[0])
	if err != nil {
		return cli.Usage("invalid file 1: %w", err)
	}
	loc2, err := cli.SplitPath(rest[1])
	if err != nil {
		return cli.Usage("invalid file 2: %w", err)
	}
	if loc1.Field != loc2.Field {
		return cli.Usage("inconsistent fields %q and %q", loc1.Field, loc2.Field)
	}

	env, err := cli.Setup(opts.configPath)
	if err != nil {
		return err
	}
	if opts.tolerance < 0 {
		opts.tolerance = env.Config.Compare.Tolerance
	}

	fmt.Fprintln(stdout, loc1.Prefix)
	fmt.Fprintln(stdout, loc2.Prefix)

	c, err := newComparison(env, loc1, loc2, opts)
	if err != nil {
		return err
	}
	defer c.close()

	equal, err := c.run(stdout)
	if err != nil {
		return err
	}
	if !equal {
		return &cli.ExitError{Code: cli.ExitMismatch}
	}
	return nil
}

type comparison struct {
	opts   options
	field  string
	s1, s2 *serialbox.Serializer
	// ref maps the rendering of each savepoint of s2 to its position.
	ref map[string]int
}

func newComparison(env *cli.Env, loc1, loc2 cli.Location, opts options) (*comparison, error) {
	s1, err := env.Open(loc1)
	if err != nil {
		return nil, err
	}
	s2, err := env.Open(loc2)
	if err != nil {
		s1.Close()
		return nil, err
	}
	c := &comparison{opts: opts, field: loc1.Field, s1: s1, s2: s2}
	if c.ref, err = savepointIndex(s2); err != nil {
		c.close()
		return nil, err
	}
	return c, nil
}

func (c *comparison) close() {
	c.s1.Close()
	c.s2.Close()
}

func savepointIndex(s *serialbox.Serializer) (map[string]int, error) {
	sps, err := s.Savepoints()
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(sps))
	for i, sp := range sps {
		if _, dup := index[sp.String()]; !dup {
			index[sp.String()] = i
		}
		sp.Close()
	}
	return index, nil
}

func (c *comparison) run(w io.Writer) (bool, error) {
	n, err := c.s1.SavepointCount()
	if err != nil {
		return false, err
	}
	equal := true
	for i := range n {
		ok, err := c.savepoint(w, i)
		if err != nil {
			return false, err
		}
		equal = equal && ok
	}
	return equal, nil
}

func (c *comparison) savepoint(w io.Writer, index int) (bool, error) {
	sp, err := c.s1.Savepoint(index)
	if err != nil {
		return false, err
	}
	defer sp.Close()

	name, err := sp.Name()
	if err != nil {
		return false, err
	}
	if !strings.HasSuffix(name, outputSuffix) {
		return true, nil
	}
	meta, err := sp.Metainfo()
	if err != nil {
		return false, err
	}
	fmt.Fprintln(w, "---------------------------------")
	fmt.Fprintln(w, name)
	fmt.Fprintln(w, formatMeta(meta))

	fields, err := sp.FieldNames()
	if err != nil {
		return false, err
	}
	if c.field != "" {
		if !slices.Contains(fields, c.field) {
			return true, nil
		}
		fields = []string{c.field}
	}
	if len(fields) == 0 {
		return true, nil
	}

	refIndex, ok := c.ref[sp.String()]
	if !ok {
		fmt.Fprintf(w, "Savepoint %s not found in %s\n", sp, c.s2.Prefix())
		return false, nil
	}
	ref, err := c.s2.Savepoint(refIndex)
	if err != nil {
		return false, err
	}
	defer ref.Close()

	equal := true
	for _, field := range fields {
		fmt.Fprintf(w, "\t%s\n", field)
		ok, err := c.compareField(w, field, sp, ref)
		if err != nil {
			return false, err
		}
		equal = equal && ok
	}
	return equal, nil
}

func (c *comparison) compareField(w io.Writer, field string, sp, ref *serialbox.Savepoint) (bool, error) {
	info1, err := c.s1.FieldInfo(field)
	if err != nil {
		return false, err
	}
	info2, err := c.s2.FieldInfo(field)
	if err != nil {
		fmt.Fprintf(w, "Field %s not found in %s\n", field, c.s2.Prefix())
		return false, nil
	}
	if !compareInfo(w, info1, info2) {
		return false, nil
	}
	if c.opts.infoOnly {
		return true, nil
	}

	has, err := ref.HasField(field)
	if err != nil {
		return false, err
	}
	if !has {
		fmt.Fprintf(w, "Field %s not recorded at %s in %s\n", field, ref, c.s2.Prefix())
		return false, nil
	}
	val, err := sp.LoadField(field)
	if err != nil {
		return false, err
	}
	want, err := ref.LoadField(field)
	if err != nil {
		return false, err
	}
	stats := cli.CompareGrids(val, want, info1.Sizes, c.opts.region, c.opts.tolerance)
	if !stats.Equal() {
		stats.WriteSummary(w)
	}
	return stats.Equal(), nil
}

func compareInfo(w io.Writer, a, b serialbox.FieldInfo) bool {
	equal := true
	report := func(label string, x, y any) {
		if x != y {
			equal = false
			fmt.Fprintf(w, "%s: %v != %v\n", label, x, y)
		}
	}
	report("Type", a.ElementType, b.ElementType)
	report("Rank", a.Rank(), b.Rank())
	report("Bytes per Element", a.BytesPerElement, b.BytesPerElement)
	for axis, name := range []string{"i", "j", "k", "l"} {
		report(name+"Size", a.Sizes[axis], b.Sizes[axis])
	}
	return equal
}

func formatMeta(meta []serialbox.MetaInfo) string {
	parts := make([]string, len(meta))
	for i, p := range meta {
		parts[i] = p.String()
	}
	return "[ " + strings.Join(parts, " ") + " ]"
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `serialbox-compare compares the output savepoints of two serialbox stores.

Usage:
  serialbox-compare [flags] <prefix1>_<field>.dat <prefix2>_<field>.dat
  serialbox-compare [flags] <prefix1>.json <prefix2>.json

The error of a value is relative when the reference exceeds 1 in
magnitude and absolute otherwise.

Flags:
`)
	flagSet.PrintDefaults()
}
