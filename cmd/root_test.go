package cmd

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/geokey/adapter"
	"github.com/arloliu/geokey/dimension"
	"github.com/arloliu/geokey/index"
	"github.com/arloliu/geokey/keyspace"
)

const trackDescriptor = `id: st
curve: hilbert
max_duplicates: 4
compression: none
byte_order: little
dimensions:
  - name: lon
    kind: periodic
    min: -180
    max: 180
    bits: 8
  - name: lat
    kind: bounded
    min: -90
    max: 90
    bits: 8
  - name: time
    kind: binned
    origin: 0
    bin_width: 10
    bits: 4
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rc := NewRootCommand(strings.NewReader(stdin), &stdout, &stderr)
	rc.SetArgs(args)
	err := rc.Execute()

	return stdout.String(), stderr.String(), err
}

func loadTestIndex(t *testing.T) *index.Index {
	t.Helper()
	d, err := index.ParseDescriptorYAML([]byte(trackDescriptor))
	require.NoError(t, err)
	ix, err := index.FromDescriptor(d)
	require.NoError(t, err)

	return ix
}

func TestRootCommand_Help(t *testing.T) {
	out, _, err := execute(t, "", "--help")
	require.NoError(t, err)
	require.Contains(t, out, "Usage:")
	require.Contains(t, out, "Available Commands:")
	require.Contains(t, out, "describe")
	require.Contains(t, out, "encode")
	require.Contains(t, out, "plan")
}

func TestDescribeCommand(t *testing.T) {
	path := writeFile(t, "st.yaml", trackDescriptor)
	ix := loadTestIndex(t)

	out, _, err := execute(t, "", "describe", "--descriptor", path)
	require.NoError(t, err)
	require.Contains(t, out, "index:       st")
	require.Contains(t, out, fmt.Sprintf("fingerprint: %016x", ix.Fingerprint()))
	require.Contains(t, out, "curve:       hilbert")
	require.Contains(t, out, "time")

	// header plus one line per tier
	tierSection := out[strings.Index(out, "TIER"):]
	require.Len(t, strings.Split(strings.TrimSpace(tierSection), "\n"), ix.MaxTier()+2)
}

func TestDescribeCommand_Errors(t *testing.T) {
	_, _, err := execute(t, "", "describe")
	require.ErrorContains(t, err, "--descriptor is required")

	_, _, err = execute(t, "", "describe", "--descriptor", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	bad := writeFile(t, "bad.yaml", "id: st\nunknown: 1\n")
	_, _, err = execute(t, "", "describe", "--descriptor", bad)
	require.Error(t, err)

	path := writeFile(t, "st.yaml", trackDescriptor)
	_, _, err = execute(t, "", "describe", "--descriptor", path, "--log-level", "loud")
	require.ErrorContains(t, err, "invalid log level")

	_, _, err = execute(t, "", "describe", "--descriptor", path, "--log-format", "xml")
	require.ErrorContains(t, err, "invalid log format")
}

func TestEncodeCommand(t *testing.T) {
	path := writeFile(t, "st.yaml", trackDescriptor)
	ix := loadTestIndex(t)
	a, err := adapter.New(ix, dimensionBindings(ix, []string{"time"}))
	require.NoError(t, err)

	stdin := `{"lon": 10, "lat": 20, "time_start": 5, "time_end": 5}
{"lon": -120.5, "lat": 45, "time_start": 12, "time_end": 15}
`
	out, _, err := execute(t, stdin, "encode", "--descriptor", path, "--time-range", "time", "--visibility", "ops", "--batch-size", "2")
	require.NoError(t, err)

	var lines []entryLine
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var line entryLine
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.NoError(t, scanner.Err())
	require.GreaterOrEqual(t, len(lines), 2)
	require.LessOrEqual(t, len(lines), 1+ix.MaxDuplicates())

	first := lines[0]
	require.Equal(t, "st", first.Index)
	key, err := hex.DecodeString(first.Key)
	require.NoError(t, err)
	require.Len(t, key, ix.KeyLen(ix.MaxTier()))

	value, err := hex.DecodeString(first.Value)
	require.NoError(t, err)
	decoded, err := a.DecodeEntry(value)
	require.NoError(t, err)
	require.Equal(t, "ops", decoded.Visibility)
	require.Equal(t, dimension.Range{Min: 10, Max: 10}, decoded.Ranges[0])
	require.Equal(t, dimension.Range{Min: 5, Max: 5}, decoded.Ranges[2])
}

func TestEncodeCommand_Errors(t *testing.T) {
	path := writeFile(t, "st.yaml", trackDescriptor)

	_, _, err := execute(t, `{"lon": 10, "lat": 20}`+"\n", "encode", "--descriptor", path)
	require.Error(t, err)

	_, _, err = execute(t, "not json\n", "encode", "--descriptor", path)
	require.ErrorContains(t, err, "record 1")

	_, _, err = execute(t, "", "encode", "--descriptor", path, "--compression", "brotli")
	require.ErrorContains(t, err, "unknown compression")
}

func TestEncodeCommand_Compression(t *testing.T) {
	path := writeFile(t, "st.yaml", trackDescriptor)

	out, _, err := execute(t, `{"lon": 1, "lat": 2, "time": 3}`+"\n", "encode", "--descriptor", path, "--compression", "zstd")
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 1)
}

func TestPlanCommand(t *testing.T) {
	path := writeFile(t, "st.yaml", trackDescriptor)
	ix := loadTestIndex(t)

	out, _, err := execute(t, "", "plan", "--descriptor", path, "-r", "0:20", "-r", "-10:10", "-r", "3:17", "-n", "8")
	require.NoError(t, err)
	bins, lines := splitPlanOutput(out)
	require.Equal(t, []string{"# bins time (2): 0 1"}, bins)
	require.NotEmpty(t, lines)
	require.LessOrEqual(t, len(lines), 8)

	ranges := make([]keyspace.Range, len(lines))
	for i, line := range lines {
		start, end, ok := strings.Cut(line, " ")
		require.True(t, ok)
		s, err := hex.DecodeString(start)
		require.NoError(t, err)
		e, err := hex.DecodeString(end)
		require.NoError(t, err)
		ranges[i] = keyspace.NewRange(s, e)
	}

	key, err := ix.EncodePoint([]float64{10, 0, 5})
	require.NoError(t, err)
	require.True(t, keyspace.Covers(ranges, key))
}

func TestPlanCommand_FullRegion(t *testing.T) {
	path := writeFile(t, "st.yaml", trackDescriptor)

	out, _, err := execute(t, "", "plan", "--descriptor", path, "--max-ranges", "1")
	require.NoError(t, err)
	bins, lines := splitPlanOutput(out)
	require.Equal(t, []string{"# bins time (1): 0"}, bins)
	require.Len(t, lines, 1)
}

func TestPlanCommand_NegativeBins(t *testing.T) {
	path := writeFile(t, "st.yaml", trackDescriptor)

	out, _, err := execute(t, "", "plan", "--descriptor", path, "-r", "0:1", "-r", "0:1", "-r", "-25:-5")
	require.NoError(t, err)
	bins, _ := splitPlanOutput(out)
	require.Equal(t, []string{"# bins time (3): -3 -2 -1"}, bins)
}

// splitPlanOutput separates the "# bins" lines of plan output from the ranges.
func splitPlanOutput(out string) (bins, ranges []string) {
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if strings.HasPrefix(line, "#") {
			bins = append(bins, line)
		} else {
			ranges = append(ranges, line)
		}
	}

	return bins, ranges
}

func TestPlanCommand_Errors(t *testing.T) {
	path := writeFile(t, "st.yaml", trackDescriptor)

	_, _, err := execute(t, "", "plan", "--descriptor", path, "-r", "a:b")
	require.ErrorContains(t, err, "region 0")

	_, _, err = execute(t, "", "plan", "--descriptor", path, "-r", "0:1")
	require.Error(t, err)

	_, _, err = execute(t, "", "plan", "--descriptor", path, "-n", "0")
	require.Error(t, err)
}

func TestConfig_Environment(t *testing.T) {
	path := writeFile(t, "st.yaml", trackDescriptor)
	t.Setenv("GEOKEY_DESCRIPTOR", path)

	out, _, err := execute(t, "", "describe")
	require.NoError(t, err)
	require.Contains(t, out, "index:       st")
}

func TestConfig_File(t *testing.T) {
	path := writeFile(t, "st.yaml", trackDescriptor)

	config := writeFile(t, "geokey.yaml", fmt.Sprintf("descriptor: %s\nmax-ranges: 2\n", path))
	out, _, err := execute(t, "", "plan", "--config", config)
	require.NoError(t, err)
	_, ranges := splitPlanOutput(out)
	require.LessOrEqual(t, len(ranges), 2)

	invalid := writeFile(t, "invalid.yaml", "colour: blue\n")
	_, _, err = execute(t, "", "describe", "--config", invalid)
	require.ErrorContains(t, err, "invalid option in configuration file")
}

func TestParseRegion(t *testing.T) {
	region, err := parseRegion([]string{"-10:-5", " 3 ", "1e3:2e3"})
	require.NoError(t, err)
	require.Equal(t, []dimension.Range{{Min: -10, Max: -5}, {Min: 3, Max: 3}, {Min: 1000, Max: 2000}}, region)

	_, err = parseRegion([]string{"1:x"})
	require.Error(t, err)
}
