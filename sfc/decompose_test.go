package sfc

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/geokey/dimension"
	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/format"
	"github.com/arloliu/geokey/keyspace"
)

func randomRegion(rng *rand.Rand, dims int) []dimension.Range {
	region := make([]dimension.Range, dims)
	for j := range region {
		a, b := rng.Float64(), rng.Float64()
		if a > b {
			a, b = b, a
		}
		region[j] = dimension.Range{Min: a, Max: b}
	}

	return region
}

// inBox reports whether a quantized cell lies inside the quantized region.
func inBox(s *Strategy, region []dimension.Range, cell []uint64) bool {
	for j, q := range cell {
		if q < s.Layout().Quantize(j, region[j].Min) || q > s.Layout().Quantize(j, region[j].Max) {
			return false
		}
	}

	return true
}

func TestDecomposeRange_Errors(t *testing.T) {
	s := mustStrategy(t, format.CurveHilbert, 8, 8)
	ok := []dimension.Range{{Min: 0, Max: 0.5}, {Min: 0, Max: 0.5}}

	_, err := s.DecomposeRange(ok[:1], 10)
	require.ErrorIs(t, err, errs.ErrDimensionMismatch)

	_, err = s.DecomposeRange([]dimension.Range{{Min: 0.6, Max: 0.5}, {Min: 0, Max: 1}}, 10)
	require.ErrorIs(t, err, errs.ErrInvalidRegion)

	_, err = s.DecomposeRange(ok, 0)
	require.ErrorIs(t, err, errs.ErrBudgetExhausted)
}

func TestDecomposeRange_FullSpace(t *testing.T) {
	for _, c := range curveTypes {
		s := mustStrategy(t, c, 10, 10)
		ranges, err := s.DecomposeRange([]dimension.Range{{Min: 0, Max: 1}, {Min: 0, Max: 1}}, 4)
		require.NoError(t, err)
		require.Equal(t, []keyspace.Range{{
			Start: keyspace.Key{0x00, 0x00, 0x00},
			End:   keyspace.Key{0xFF, 0xFF, 0xF0},
		}}, ranges)
	}
}

func TestDecomposeRange_SinglePoint(t *testing.T) {
	for _, c := range curveTypes {
		s := mustStrategy(t, c, 12, 12)
		p := []float64{0.3, 0.7}
		key, err := s.Encode(p)
		require.NoError(t, err)

		ranges, err := s.DecomposeRange([]dimension.Range{dimension.Point(0.3), dimension.Point(0.7)}, 8)
		require.NoError(t, err)
		require.Equal(t, []keyspace.Range{keyspace.Single(key)}, ranges)
	}
}

// Every cell intersecting the region is covered and the budget is honoured.
func TestDecomposeRange_SupersetWithinBudget(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	layouts := [][]uint8{{5, 5}, {4, 3, 4}, {6, 2}}

	for _, c := range curveTypes {
		for _, bits := range layouts {
			s := mustStrategy(t, c, bits...)
			total := uint64(1) << uint(s.Layout().TotalBits())
			for _, budget := range []int{1, 3, 16, 1000} {
				for range 20 {
					region := randomRegion(rng, len(bits))
					ranges, err := s.DecomposeRange(region, budget)
					require.NoError(t, err)
					require.NotEmpty(t, ranges)
					require.LessOrEqual(t, len(ranges), budget)

					for h := range total {
						key := keyAt(s, h)
						cell, err := s.Cell(key)
						require.NoError(t, err)
						if inBox(s, region, cell) {
							require.True(t, keyspace.Covers(ranges, key),
								"%s %v budget %d: cell %v of %v not covered", c, bits, budget, cell, region)
						}
					}
				}
			}
		}
	}
}

// With an unlimited budget the decomposition is exact.
func TestDecomposeRange_ExactWithLargeBudget(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	for _, c := range curveTypes {
		s := mustStrategy(t, c, 4, 4)
		total := uint64(1) << uint(s.Layout().TotalBits())
		for range 20 {
			region := randomRegion(rng, 2)
			ranges, err := s.DecomposeRange(region, 1<<20)
			require.NoError(t, err)

			for h := range total {
				key := keyAt(s, h)
				cell, err := s.Cell(key)
				require.NoError(t, err)
				require.Equal(t, inBox(s, region, cell), keyspace.Covers(ranges, key), "cell %v region %v", cell, region)
			}
		}
	}
}

func TestDecomposeRange_Deterministic(t *testing.T) {
	s := mustStrategy(t, format.CurveHilbert, 20, 20, 10)
	region := []dimension.Range{{Min: 0.1, Max: 0.35}, {Min: 0.42, Max: 0.9}, {Min: 0.25, Max: 0.26}}

	first, err := s.DecomposeRange(region, 32)
	require.NoError(t, err)
	require.LessOrEqual(t, len(first), 32)
	for range 5 {
		again, err := s.DecomposeRange(region, 32)
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("decomposition changed (-first +again):\n%s", diff)
		}
	}
}

func TestDecomposeRange_RecursionCeiling(t *testing.T) {
	s, err := New(format.CurveZOrder, []uint8{16, 16}, WithMaxRecursionDepth(2))
	require.NoError(t, err)

	// at depth 2 every range covers whole quarter-of-a-quarter cells
	ranges, err := s.DecomposeRange([]dimension.Range{{Min: 0.01, Max: 0.02}, {Min: 0.01, Max: 0.02}}, 100)
	require.NoError(t, err)
	require.Equal(t, []keyspace.Range{{
		Start: keyspace.Key{0x00, 0x00, 0x00, 0x00},
		End:   keyspace.Key{0x0F, 0xFF, 0xFF, 0xFF},
	}}, ranges)
}

func TestDecomposeRange_WrappedHalves(t *testing.T) {
	// a periodic query crossing the wrap point becomes two boxes; each is
	// decomposed on its own and the union is reduced by the caller
	s := mustStrategy(t, format.CurveHilbert, 8, 8)
	left, err := s.DecomposeRange([]dimension.Range{{Min: 0, Max: 0.1}, {Min: 0.4, Max: 0.6}}, 8)
	require.NoError(t, err)
	right, err := s.DecomposeRange([]dimension.Range{{Min: 0.9, Max: 1}, {Min: 0.4, Max: 0.6}}, 8)
	require.NoError(t, err)

	merged := keyspace.Reduce(append(append([]keyspace.Range(nil), left...), right...), 8)
	require.LessOrEqual(t, len(merged), 8)

	for _, p := range [][]float64{{0.05, 0.5}, {0.95, 0.45}, {0.999, 0.6}, {0, 0.4}} {
		key, err := s.Encode(p)
		require.NoError(t, err)
		require.True(t, keyspace.Covers(merged, key), "point %v", p)
	}
}

func BenchmarkDecomposeRange(b *testing.B) {
	region := []dimension.Range{{Min: 0.1, Max: 0.35}, {Min: 0.42, Max: 0.9}}
	for _, c := range curveTypes {
		s := mustStrategy(b, c, 31, 31)
		b.Run(c.String(), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				_, _ = s.DecomposeRange(region, 64)
			}
		})
	}
}
