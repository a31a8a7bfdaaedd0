package basemap

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/ground/internal/models"
)

// indexJSON собирает индекс basemap из пар (bound, properties)
func indexJSON(t *testing.T, entries ...indexEntry) []byte {
	t.Helper()

	fc := geojson.NewFeatureCollection()
	for _, e := range entries {
		f := geojson.NewFeature(e.bound.ToPolygon())
		for k, v := range e.props {
			f.Properties[k] = v
		}
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	require.NoError(t, err)
	return data
}

type indexEntry struct {
	props map[string]any
	bound orb.Bound
}

func TestParseIndex(t *testing.T) {
	data := indexJSON(t,
		indexEntry{
			bound: orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}},
			props: map[string]any{"id": "a", "url": "https://tiles.example.com/set/a.mbtiles", "checksum": "ABCD"},
		},
		indexEntry{
			bound: orb.Bound{Min: orb.Point{2, 0}, Max: orb.Point{3, 1}},
			props: map[string]any{"url": "https://tiles.example.com/set/b.mbtiles"},
		},
	)

	tiles, err := ParseIndex(data)
	require.NoError(t, err)
	require.Len(t, tiles, 2)

	a := tiles[0]
	assert.Equal(t, "a", a.ID)
	assert.Equal(t, "https://tiles.example.com/set/a.mbtiles", a.URL)
	assert.Equal(t, "abcd", a.Checksum)
	assert.Equal(t, models.Bounds{South: 0, West: 0, North: 1, East: 1}, a.Bounds)
	assert.Equal(t, models.DownloadStatePending, a.State)
	assert.True(t, strings.HasSuffix(a.Path, "-a.mbtiles"))

	b := tiles[1]
	assert.Equal(t, "https://tiles.example.com/set/b.mbtiles", b.ID, "url is the id of last resort")
	assert.Equal(t, models.Bounds{South: 0, West: 2, North: 1, East: 3}, b.Bounds)
}

func TestParseIndex_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "not json", data: []byte("{")},
		{
			name: "missing url",
			data: indexJSON(t, indexEntry{
				bound: orb.Bound{Max: orb.Point{1, 1}},
				props: map[string]any{"id": "a"},
			}),
		},
		{
			name: "missing geometry",
			data: []byte(`{"type":"FeatureCollection","features":[{"type":"Feature","geometry":null,"properties":{"url":"http://x/a"}}]}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIndex(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestTilePath_StaysInsideDirectory(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{url: "https://x/a/b/tile.mbtiles", want: "tile.mbtiles"},
		{url: "https://x/../../etc/passwd", want: "passwd"},
		{url: "https://x/", want: "id-1"},
	}

	for _, tt := range tests {
		got, err := tilePath("id-1", tt.url)
		require.NoError(t, err)
		assert.Equal(t, filepath.Base(got), got, "no directory components in %q", got)
		assert.True(t, strings.HasSuffix(got, "-"+tt.want), "%s -> %s", tt.url, got)
	}

	first, _ := tilePath("a", "https://x/1/tile.mbtiles")
	second, _ := tilePath("b", "https://x/2/tile.mbtiles")
	assert.NotEqual(t, first, second)
}

func TestIntersecting(t *testing.T) {
	a := &models.TileSource{ID: "a", Bounds: models.Bounds{South: 0, West: 0, North: 1, East: 1}}
	b := &models.TileSource{ID: "b", Bounds: models.Bounds{South: 0, West: 2, North: 1, East: 3}}

	got := Intersecting([]*models.TileSource{a, b}, models.Bounds{South: 0.5, West: 0.5, North: 0.6, East: 0.6})
	assert.Equal(t, []*models.TileSource{a}, got)

	got = Intersecting([]*models.TileSource{a, b}, models.Bounds{South: -1, West: -1, North: 2, East: 4})
	assert.Len(t, got, 2)

	assert.Empty(t, Intersecting([]*models.TileSource{a, b}, models.Bounds{South: 10, West: 10, North: 11, East: 11}))
}

func TestCoordinateGeocoder(t *testing.T) {
	name, err := CoordinateGeocoder{}.AreaName(context.Background(), models.Bounds{South: 0, West: 0, North: 1, East: 1})
	require.NoError(t, err)
	assert.Equal(t, "Area near 0.5, 0.5", name)
}
