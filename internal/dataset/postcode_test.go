package dataset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/pna-map-generator/internal/domain"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestReadPostcodes(t *testing.T) {
	data := gzipped(t, "id,postcode,latitude,longitude\n"+
		"1,LS1 1AA,53.796,-1.548\n"+
		"2,BD1 2BB,53.793,-1.752\n"+
		"3,XX1 1XX,,\n"+
		"4,LS1 1AA,0,0\n")

	idx, stats, err := ReadPostcodes(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Rows)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 2, idx.Len())

	c, ok := idx.Lookup("LS1 1AA")
	require.True(t, ok)
	assert.InDelta(t, 53.796, c.Lat, 1e-9, "first entry wins")
	assert.InDelta(t, -1.548, c.Lon, 1e-9)

	_, ok = idx.Lookup("XX1 1XX")
	assert.False(t, ok)
}

func TestReadPostcodes_MissingColumn(t *testing.T) {
	data := gzipped(t, "postcode,lat,longitude\nLS1 1AA,53.7,-1.5\n")

	_, _, err := ReadPostcodes(bytes.NewReader(data))

	var schemaErr *domain.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"latitude"}, schemaErr.Missing)
}

func TestReadPostcodes_NotGzip(t *testing.T) {
	_, _, err := ReadPostcodes(strings.NewReader("postcode,latitude,longitude\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decompress postcode table")
}

func TestLoadPostcodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postcodes.csv.gz")
	require.NoError(t, os.WriteFile(path, gzipped(t, "postcode,latitude,longitude\nLS1 1AA,53.7,-1.5\n"), 0o600))

	idx, stats, err := LoadPostcodes(path)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, 1, stats.Rows)
	assert.Zero(t, stats.Skipped)
}

func TestLoadPostcodes_MissingFile(t *testing.T) {
	_, _, err := LoadPostcodes(filepath.Join(t.TempDir(), "missing.csv.gz"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open postcode table")
}
