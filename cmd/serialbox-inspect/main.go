// Inspection tool for serialbox stores
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/robert-malhotra/go-serialbox/internal/cli"
	"github.com/robert-malhotra/go-serialbox/serialbox"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		cli.Exit(err)
	}
}

func run(args []string, stdout io.Writer) error {
	var configPath string
	var maxDepth int
	flagSet := pflag.NewFlagSet("serialbox-inspect", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "config file (default $SERIALBOX_CONFIG)")
	flagSet.IntVar(&maxDepth, "depth", 0, "limit the savepoint tree to this depth (0: no limit)")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return cli.Usage("%w", err)
	}
	if flagSet.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: serialbox-inspect [--config file] [--depth n] <prefix>.json")
		return cli.Usage("expected one database")
	}

	loc, err := cli.SplitPath(flagSet.Arg(0))
	if err != nil {
		return cli.Usage("invalid file: %w", err)
	}
	env, err := cli.Setup(configPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "=== Inspecting %s ===\n\n", loc)

	st, err := serialbox.OpenStore(loc.Dir, loc.Prefix, env.StoreOptions()...)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Metainfo()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Metainfo: %v\n\n", meta)

	fields := st.FieldNames()
	fmt.Fprintf(stdout, "Fields: %d\n", len(fields))
	for _, name := range fields {
		info, err := st.FieldInfo(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "  %s\n", info)
		fieldMeta, err := st.FieldMetainfo(name)
		if err != nil {
			fmt.Fprintf(stdout, "    Metainfo: ERROR %v\n", err)
			continue
		}
		if len(fieldMeta) > 0 {
			fmt.Fprintf(stdout, "    Metainfo: %v\n", fieldMeta)
		}
	}
	fmt.Fprintln(stdout)

	tree := st.Tree()
	fmt.Fprintf(stdout, "%s: %d savepoints\n", tree, tree.Len())
	return serialbox.Walk(tree, func(path []any, sp *serialbox.Savepoint) error {
		indent := strings.Repeat("  ", len(path))
		key := path[len(path)-1]
		if sp == nil {
			fmt.Fprintf(stdout, "%s%v\n", indent, key)
		} else {
			names, err := sp.FieldNames()
			if err != nil {
				fmt.Fprintf(stdout, "%s%v: ERROR getting fields: %v\n", indent, key, err)
			} else {
				fmt.Fprintf(stdout, "%s%v -> %s %v\n", indent, key, sp, names)
			}
		}
		if maxDepth > 0 && len(path) >= maxDepth {
			return serialbox.SkipNode
		}
		return nil
	})
}
