// serialbox-dump prints the description and data of one field of a
// serialbox store at a savepoint.
//
// The field is named by its data file (<prefix>_<field>.dat) or by the
// store database (<prefix>.json) together with --field. Savepoints are
// addressed by their position in the store.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/robert-malhotra/go-serialbox/internal/cli"
	"github.com/robert-malhotra/go-serialbox/serialbox"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		cli.Exit(err)
	}
}

type options struct {
	configPath string
	field      string
	infoOnly   bool
	inner      bool
	region     cli.Region
}

func run(args []string, stdout io.Writer) error {
	opts := options{region: cli.FullRegion()}

	flagSet := pflag.NewFlagSet("serialbox-dump", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "config file (default $SERIALBOX_CONFIG)")
	flagSet.StringVarP(&opts.field, "field", "f", "", "field to dump when the input is a database")
	flagSet.BoolVarP(&opts.infoOnly, "info", "q", false, "dump the field description only")
	flagSet.BoolVar(&opts.inner, "inner", false, "index and dump the field without its halo")
	opts.region.AddFlags(flagSet, "dump")
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
	if len(rest) < 1 || len(rest) > 2 || (len(rest) == 1 && !opts.infoOnly) {
		printHelp(flagSet)
		return cli.Usage("expected a field file and a savepoint index")
	}

	loc, err := cli.SplitPath(rest[0])
	if err != nil {
		return cli.Usage("invalid file: %w", err)
	}
	if loc.Field == "" {
		loc.Field = opts.field
	} else if opts.field != "" && opts.field != loc.Field {
		return cli.Usage("--field %q does not match field file %q", opts.field, loc.Field)
	}
	if loc.Field == "" {
		return cli.Usage("a database input needs --field")
	}

	index := -1
	if len(rest) == 2 {
		if index, err = strconv.Atoi(rest[1]); err != nil || index < 0 {
			return cli.Usage("invalid savepoint index %q", rest[1])
		}
	}

	env, err := cli.Setup(opts.configPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Directory: %s\n", loc.Dir)
	fmt.Fprintf(stdout, "Basename: %s\n", loc.Prefix)
	if index >= 0 {
		fmt.Fprintf(stdout, "SavepointId: %d\n", index)
	}
	return dump(stdout, env, loc, index, opts)
}

func dump(w io.Writer, env *cli.Env, loc cli.Location, index int, opts options) error {
	s, err := env.Open(loc)
	if err != nil {
		return err
	}
	defer s.Close()

	info, err := s.FieldInfo(loc.Field)
	if err != nil {
		return err
	}
	sizes, offset := info.Shape(), [4]int{}
	if opts.inner {
		sizes, offset = info.InnerShape(), info.MinusHalo
	}
	writeInfo(w, info, sizes, opts.region)
	if opts.infoOnly {
		return nil
	}

	n, err := s.SavepointCount()
	if err != nil {
		return err
	}
	if index >= n {
		return fmt.Errorf("savepoint index %d out of range, store has %d savepoints", index, n)
	}
	sp, err := s.Savepoint(index)
	if err != nil {
		return err
	}
	defer sp.Close()

	fmt.Fprintf(w, "\nSavepoint: %s\n", sp)
	data, err := sp.LoadField(loc.Field)
	if err != nil {
		return err
	}
	return cli.WriteGrid(w, cli.Offset(data, offset), sizes, opts.region)
}

func writeInfo(w io.Writer, info serialbox.FieldInfo, sizes [4]int, region cli.Region) {
	fmt.Fprintf(w, "Field: %s\n", info.Name)
	fmt.Fprintf(w, "Type: %s\n", info.ElementType)
	fmt.Fprintf(w, "Rank: %d\n", info.Rank())
	fmt.Fprintf(w, "Bytes per Element: %d\n", info.BytesPerElement)
	lo, hi := region.Clamp(sizes)
	for axis, name := range []string{"i", "j", "k", "l"} {
		fmt.Fprintf(w, "%sSize: %d (%d, %d)\n", name, sizes[axis], lo[axis], hi[axis])
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `serialbox-dump prints one field of a serialbox store at a savepoint.

Usage:
  serialbox-dump [flags] <prefix>_<field>.dat <savepoint-index>
  serialbox-dump [flags] --field <field> <prefix>.json <savepoint-index>
  serialbox-dump -q [flags] <prefix>_<field>.dat

Bounds are a single index n, a range lo:hi, an open range lo: or :hi,
or : for the whole axis.

Flags:
`)
	flagSet.PrintDefaults()
}
