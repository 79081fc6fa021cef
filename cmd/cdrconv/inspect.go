package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/taoyao-code/cdr-converter/internal/protocol/scdr"
)

func newInspectCmd() *cobra.Command {
	var (
		showAll  bool
		showHex  bool
		showTags bool
	)
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Decode a file and print every record without writing any output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return inspect(cmd.OutOrStdout(), data, showAll, showHex, showTags)
		},
	}
	cmd.Flags().BoolVar(&showAll, "all", false, "also print records dropped by the row filter")
	cmd.Flags().BoolVar(&showHex, "hex", false, "dump each record's raw value")
	cmd.Flags().BoolVar(&showTags, "fields", false, "print decoded fields by name")
	return cmd
}

func inspect(w io.Writer, data []byte, showAll, showHex, showTags bool) error {
	res := scdr.ReadFrames(bytes.NewReader(data))
	kept := 0
	for i, f := range res.Frames {
		p := scdr.Project(f)
		if p.Kept {
			kept++
		}
		if !p.Kept && !showAll {
			continue
		}
		mark := "keep"
		if !p.Kept {
			mark = "drop"
		}
		fmt.Fprintf(w, "#%d @%d %s %s\n", i, f.Offset, mark, p.Line)
		if showTags {
			names := make([]string, 0, len(p.Fields))
			for name := range p.Fields {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(w, "    %-32s %s\n", name, p.Fields[name])
			}
		}
		for _, issue := range p.Issues {
			fmt.Fprintf(w, "    issue: %v\n", issue)
		}
		for _, n := range p.Notices {
			fmt.Fprintf(w, "    notice: %s at +%d: %s\n", scdr.TagName(n.Tag), n.Offset, n.Message)
		}
		if showHex {
			fmt.Fprint(w, hex.Dump(f.Value))
		}
	}
	fmt.Fprintf(w, "frames=%d kept=%d dropped=%d\n", len(res.Frames), kept, len(res.Frames)-kept)
	if res.Err != nil {
		fmt.Fprintf(w, "framing error: %v\n", res.Err)
	}
	return nil
}
