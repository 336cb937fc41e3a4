package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arloliu/geokey/index"
)

func newDescribeCommand(stdout, stderr io.Writer) *cobra.Command {
	ccmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the fingerprint and tier layout of an index.",
		Long: `
Print the configuration fingerprint of an index descriptor, its dimensions and,
for every tier, the key length and the number of cells.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, stderr)
			if err != nil {
				return err
			}
			ix, err := loadIndex(cmd)
			if err != nil {
				return err
			}
			logger.Debug("loaded index", "index", ix.ID(), "fingerprint", fmt.Sprintf("%016x", ix.Fingerprint()))

			return describe(stdout, ix)
		},
	}

	return ccmd
}

func describe(w io.Writer, ix *index.Index) error {
	fmt.Fprintf(w, "index:       %s\n", ix.ID())
	fmt.Fprintf(w, "fingerprint: %016x\n", ix.Fingerprint())
	fmt.Fprintf(w, "curve:       %s\n", ix.Curve())
	fmt.Fprintf(w, "compression: %s\n", ix.Compression())
	fmt.Fprintf(w, "duplicates:  %d\n\n", ix.MaxDuplicates())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DIMENSION\tKIND\tBITS\tMIN\tMAX\tBIN WIDTH")
	for _, dd := range ix.Descriptor().Dimensions {
		width := "-"
		if dd.BinWidth > 0 {
			width = fmt.Sprintf("%g", dd.BinWidth)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%g\t%g\t%s\n", dd.Name, dd.Kind, dd.Bits, dd.Min, dd.Max, width)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "TIER\tKEY BYTES\tCELLS")
	for t := 0; t <= ix.MaxTier(); t++ {
		fmt.Fprintf(tw, "%d\t%d\t%d\n", t, ix.KeyLen(t), ix.CellCount(t))
	}

	return tw.Flush()
}
