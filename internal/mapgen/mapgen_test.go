// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package mapgen

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdgeo/roadctl/internal/roadnet"
)

type fakeGeocoder struct {
	coords map[string][2]float64
	calls  []string
}

func (f *fakeGeocoder) Geocode(_ context.Context, query string) (float64, float64, error) {
	f.calls = append(f.calls, query)
	c, ok := f.coords[query]
	if !ok {
		return 0, 0, errors.New("no results")
	}
	return c[0], c[1], nil
}

func sampleNetwork() *roadnet.Network {
	n := roadnet.New("Bangladesh", "drive")
	n.AddNode(roadnet.Node{ID: 1, Lat: 23.7, Lon: 90.4})
	n.AddNode(roadnet.Node{ID: 2, Lat: 23.8, Lon: 90.5})
	n.AddNode(roadnet.Node{ID: 3, Lat: 22.3, Lon: 91.8})
	n.AddEdge(1, 2, 1000, "N1", "motorway")
	n.AddEdge(2, 3, 2000, "", "residential")
	return n
}

func TestStyleForFallback(t *testing.T) {
	tests := []struct {
		class string
		color string
	}{
		{"motorway", "#FF0000"},
		{"trunk", "#FF4500"},
		{"primary", "#FFA500"},
		{"secondary", "#FFFF00"},
		{"tertiary", "#90EE90"},
		{"residential", "#87CEEB"},
		{"unclassified", "#808080"},
		{"service", "#808080"},
		{"", "#808080"},
	}

	for _, tc := range tests {
		t.Run(tc.class, func(t *testing.T) {
			assert.Equal(t, tc.color, StyleFor(tc.class).Color)
		})
	}
}

func TestRenderGroupsEdgesByClass(t *testing.T) {
	var buf bytes.Buffer

	err := Render(context.Background(), &buf, sampleNetwork(), nil, Options{})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "overlays['Motorway']")
	assert.Contains(t, out, "overlays['Residential']")
	assert.Contains(t, out, "#FF0000")
	assert.Contains(t, out, "#87CEEB")
	assert.Contains(t, out, "N1")

	// Class order is deterministic: motorway before residential.
	assert.Less(t, strings.Index(out, "Motorway"), strings.Index(out, "Residential"))
}

func TestRenderCentersOnNetworkMean(t *testing.T) {
	var buf bytes.Buffer

	err := Render(context.Background(), &buf, sampleNetwork(), nil, Options{})
	require.NoError(t, err)

	// (23.7 + 23.8 + 22.3) / 3 = 23.266..., (90.4 + 90.5 + 91.8) / 3 = 90.9
	assert.Contains(t, buf.String(), "setView([23.26")
}

func TestRenderEmptyNetworkUsesFallbackView(t *testing.T) {
	var buf bytes.Buffer

	err := Render(context.Background(), &buf, roadnet.New("Bangladesh", "drive"), nil, Options{})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "setView([23.685, 90.3563], 7)")
	assert.NotContains(t, out, "L.geoJSON")
}

func TestRenderSkipsCitiesThatFailToGeocode(t *testing.T) {
	var buf bytes.Buffer
	geocoder := &fakeGeocoder{coords: map[string][2]float64{
		"Dhaka":  {23.76, 90.39},
		"Sylhet": {24.9, 91.87},
	}}

	err := Render(context.Background(), &buf, sampleNetwork(), geocoder, Options{
		Cities: []string{"Dhaka", "Atlantis", "Sylhet"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "bindPopup('Dhaka')")
	assert.Contains(t, out, "bindPopup('Sylhet')")
	assert.NotContains(t, out, "Atlantis")
	assert.Equal(t, []string{"Dhaka", "Atlantis", "Sylhet"}, geocoder.calls)
}

func TestRenderIncludesBoundaryOverlay(t *testing.T) {
	var buf bytes.Buffer
	boundary := geojson.NewGeometry(orb.Polygon{{
		{90.0, 23.0}, {91.0, 23.0}, {91.0, 24.0}, {90.0, 23.0},
	}})

	err := Render(context.Background(), &buf, sampleNetwork(), nil, Options{Boundary: boundary})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "overlays['District Boundaries']")
	assert.Contains(t, out, `"type":"Polygon"`)
}

func TestRenderOmitsBoundaryWhenAbsent(t *testing.T) {
	var buf bytes.Buffer

	err := Render(context.Background(), &buf, sampleNetwork(), nil, Options{})
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "District Boundaries")
}

func TestWriteFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.html")
	require.NoError(t, os.WriteFile(path, []byte("stale content"), 0o644))

	err := WriteFile(context.Background(), path, sampleNetwork(), nil, Options{Title: "Test Map"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale content")
	assert.Contains(t, string(data), "<title>Test Map</title>")
}

func TestRenderDefaultTitle(t *testing.T) {
	var buf bytes.Buffer

	err := Render(context.Background(), &buf, sampleNetwork(), nil, Options{})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "<title>Bangladesh Road Network</title>")
}
