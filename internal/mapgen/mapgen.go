// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package mapgen

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/bdgeo/roadctl/internal/config"
	"github.com/bdgeo/roadctl/internal/roadnet"
)

// Default view when the network carries no nodes to center on.
const (
	fallbackLat = 23.685
	fallbackLon = 90.3563
	DefaultZoom = 7
)

// DefaultTiles is the base tile layer, overridable via the map.tiles config
// value.
const DefaultTiles = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"

// Geocoder resolves a place name to coordinates for city markers.
// *nominatim.Client satisfies it.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (lat, lon float64, err error)
}

// Options controls the rendered map.
type Options struct {
	Title    string
	Zoom     int
	Cities   []string
	Boundary *geojson.Geometry
}

// Marker is a labeled point on the map.
type Marker struct {
	Name string
	Lat  float64
	Lon  float64
}

type layer struct {
	// Var is sanitized by jsIdent and interpolated as a JS identifier,
	// so it bypasses the template's contextual escaping.
	Var     template.JS
	Label   string
	Color   string
	Weight  float64
	Opacity float64
	GeoJSON template.JS
}

type page struct {
	Title     string
	Tiles     string
	CenterLat float64
	CenterLon float64
	Zoom      int
	Layers    []layer
	Boundary  template.JS
	Markers   []Marker
}

// Render writes a self-contained Leaflet HTML map of the network. Each road
// classification gets its own toggleable overlay, cities that geocode get
// markers, and the boundary geometry (when present) is drawn dashed on top.
// A city that fails to geocode is skipped with a warning, never fatal.
func Render(ctx context.Context, w io.Writer, n *roadnet.Network, geocoder Geocoder, opts Options) error {
	layers, err := buildLayers(n)
	if err != nil {
		return err
	}

	p := page{
		Title:  opts.Title,
		Zoom:   opts.Zoom,
		Layers: layers,
	}
	if p.Title == "" {
		p.Title = fmt.Sprintf("%s Road Network", n.Place)
	}
	if p.Zoom <= 0 {
		p.Zoom = DefaultZoom
	}
	p.Tiles, _ = config.GetString("map.tiles", DefaultTiles)

	p.CenterLat, p.CenterLon = fallbackLat, fallbackLon
	if lat, lon, ok := n.Center(); ok {
		p.CenterLat, p.CenterLon = lat, lon
	}

	if opts.Boundary != nil {
		raw, err := json.Marshal(opts.Boundary)
		if err != nil {
			return fmt.Errorf("failed to encode boundary geometry: %w", err)
		}
		p.Boundary = template.JS(raw)
	}

	p.Markers = resolveMarkers(ctx, geocoder, opts.Cities)

	return pageTemplate.Execute(w, p)
}

// WriteFile renders the map to path, replacing any existing file.
func WriteFile(ctx context.Context, path string, n *roadnet.Network, geocoder Geocoder, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create map file: %w", err)
	}
	defer f.Close()

	if err := Render(ctx, f, n, geocoder, opts); err != nil {
		return err
	}
	return f.Close()
}

// buildLayers groups edges by classification into one GeoJSON feature
// collection per class, in the network's stable class order.
func buildLayers(n *roadnet.Network) ([]layer, error) {
	byClass := make(map[string]*geojson.FeatureCollection)
	for _, e := range n.Edges {
		from, ok := n.Nodes[e.From]
		if !ok {
			continue
		}
		to, ok := n.Nodes[e.To]
		if !ok {
			continue
		}

		fc, ok := byClass[e.Class]
		if !ok {
			fc = geojson.NewFeatureCollection()
			byClass[e.Class] = fc
		}

		f := geojson.NewFeature(orb.LineString{
			{from.Lon, from.Lat},
			{to.Lon, to.Lat},
		})
		f.Properties["highway"] = e.Class
		f.Properties["length"] = e.Length
		if e.Name != "" {
			f.Properties["name"] = e.Name
		}
		fc.Append(f)
	}

	layers := make([]layer, 0, len(byClass))
	for _, class := range n.Classes() {
		fc, ok := byClass[class]
		if !ok {
			continue
		}
		raw, err := fc.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s layer: %w", class, err)
		}

		style := StyleFor(class)
		layers = append(layers, layer{
			Var:     jsIdent(class),
			Label:   labelFor(class),
			Color:   style.Color,
			Weight:  style.Weight,
			Opacity: style.Opacity,
			GeoJSON: template.JS(raw),
		})
	}
	return layers, nil
}

func resolveMarkers(ctx context.Context, geocoder Geocoder, cities []string) []Marker {
	if geocoder == nil {
		return nil
	}
	markers := make([]Marker, 0, len(cities))
	for _, city := range cities {
		lat, lon, err := geocoder.Geocode(ctx, city)
		if err != nil {
			log.WithError(err).WithField("city", city).Warn("skipping city marker")
			continue
		}
		markers = append(markers, Marker{Name: city, Lat: lat, Lon: lon})
	}
	return markers
}

// jsIdent maps a classification to a safe JS variable suffix.
func jsIdent(class string) template.JS {
	return template.JS(strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, class))
}

func labelFor(class string) string {
	words := strings.Split(strings.ReplaceAll(class, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

var pageTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{ .Title }}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/leaflet-minimap/3.6.1/Control.MiniMap.min.css">
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/leaflet-measure/3.1.0/leaflet-measure.min.css">
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/leaflet.fullscreen/2.4.0/Control.FullScreen.min.css">
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script src="https://cdnjs.cloudflare.com/ajax/libs/leaflet-minimap/3.6.1/Control.MiniMap.min.js"></script>
<script src="https://cdnjs.cloudflare.com/ajax/libs/leaflet-measure/3.1.0/leaflet-measure.min.js"></script>
<script src="https://cdnjs.cloudflare.com/ajax/libs/leaflet.fullscreen/2.4.0/Control.FullScreen.min.js"></script>
<script>
var map = L.map('map', { fullscreenControl: true }).setView([{{ .CenterLat }}, {{ .CenterLon }}], {{ .Zoom }});
L.tileLayer('{{ .Tiles }}', {
	attribution: '&copy; OpenStreetMap contributors',
	maxZoom: 19
}).addTo(map);

var overlays = {};
{{ range .Layers }}
var layer_{{ .Var }} = L.geoJSON({{ .GeoJSON }}, {
	style: { color: '{{ .Color }}', weight: {{ .Weight }}, opacity: {{ .Opacity }} },
	onEachFeature: function (feature, l) {
		var p = feature.properties || {};
		var html = (p.name ? '<b>' + p.name + '</b><br>' : '') +
			p.highway + '<br>' + Math.round(p.length) + ' m';
		l.bindPopup(html);
	}
}).addTo(map);
overlays['{{ .Label }}'] = layer_{{ .Var }};
{{ end }}
{{ if .Boundary }}
var boundary = L.geoJSON({{ .Boundary }}, {
	style: { color: '#000000', weight: 2, opacity: 0.9, fill: false, dashArray: '5, 5' }
}).addTo(map);
overlays['District Boundaries'] = boundary;
{{ end }}
{{ range .Markers }}
L.marker([{{ .Lat }}, {{ .Lon }}]).addTo(map).bindPopup('{{ .Name }}');
{{ end }}
L.control.layers(null, overlays, { collapsed: false }).addTo(map);
new L.Control.MiniMap(
	L.tileLayer('{{ .Tiles }}'),
	{ toggleDisplay: true }
).addTo(map);
new L.Control.Measure({ primaryLengthUnit: 'kilometers' }).addTo(map);
</script>
</body>
</html>
`))
