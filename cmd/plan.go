package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/geokey/dimension"
	"github.com/arloliu/geokey/index"
	"github.com/arloliu/geokey/sfc"
)

type planFlags struct {
	region    []string
	maxRanges int
	maxDepth  int
}

func newPlanCommand(stdout, stderr io.Writer) *cobra.Command {
	var f planFlags
	ccmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the key ranges to scan for a query region.",
		Long: `
Decompose a query region into at most --max-ranges closed key ranges and print
one hex encoded "start end" pair per line. The ranges are preceded by one
"# bins" comment line per binned dimension listing the bins the region touches.

The region is given as one min:max interval per dimension, in dimension order.
An omitted region covers the whole index.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, stderr)
			if err != nil {
				return err
			}

			var opts []index.Option
			if f.maxDepth > 0 {
				opts = append(opts, index.WithDecomposition(sfc.WithMaxRecursionDepth(f.maxDepth)))
			}
			ix, err := loadIndex(cmd, opts...)
			if err != nil {
				return err
			}

			region := ix.FullRegion()
			if len(f.region) > 0 {
				if region, err = parseRegion(f.region); err != nil {
					return err
				}
			}

			plan, err := ix.PlanQuery(region, f.maxRanges)
			if err != nil {
				return err
			}
			logger.Info("planned query", "index", ix.ID(), "ranges", len(plan.Ranges), "tiers", plan.Tiers)

			writePlan(stdout, ix, plan)

			return nil
		},
	}

	flags := ccmd.Flags()
	flags.StringSliceVarP(&f.region, "region", "r", nil, "min:max interval per dimension")
	flags.IntVarP(&f.maxRanges, "max-ranges", "n", 64, "range budget")
	flags.IntVar(&f.maxDepth, "max-depth", 0, "decomposition recursion depth, 0 for the default")

	return ccmd
}

func writePlan(w io.Writer, ix *index.Index, plan *index.QueryPlan) {
	for _, name := range ix.DimensionNames() {
		bm, ok := plan.Bins[name]
		if !ok {
			continue
		}
		ids := plan.BinIDs(name)
		text := make([]string, len(ids))
		for i, id := range ids {
			text[i] = strconv.FormatInt(id, 10)
		}
		fmt.Fprintf(w, "# bins %s (%d): %s\n", name, bm.GetCardinality(), strings.Join(text, " "))
	}

	for _, r := range plan.Ranges {
		fmt.Fprintf(w, "%s %s\n", r.Start, r.End)
	}
}

// parseRegion parses "min:max" intervals. A single value is a point.
func parseRegion(specs []string) ([]dimension.Range, error) {
	region := make([]dimension.Range, len(specs))
	for i, s := range specs {
		lo, hi, ok := strings.Cut(strings.TrimSpace(s), ":")
		if !ok {
			hi = lo
		}
		minValue, err := strconv.ParseFloat(lo, 64)
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", i, err)
		}
		maxValue, err := strconv.ParseFloat(hi, 64)
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", i, err)
		}
		region[i] = dimension.Range{Min: minValue, Max: maxValue}
	}

	return region, nil
}
