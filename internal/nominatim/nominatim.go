// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package nominatim

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/apex/log"
	"github.com/paulmach/orb/geojson"
	"github.com/tidwall/gjson"

	"github.com/bdgeo/roadctl/internal/config"
	"github.com/bdgeo/roadctl/internal/version"
)

// DefaultEndpoint is the public Nominatim instance. Its usage policy requires
// an identifying User-Agent, which every request sends.
const DefaultEndpoint = "https://nominatim.openstreetmap.org"

// Boundary is an administrative boundary as returned by the geocoder.
type Boundary struct {
	DisplayName string            `json:"display_name"`
	BoundingBox []float64         `json:"boundingbox,omitempty"`
	Geometry    *geojson.Geometry `json:"geometry"`
}

// Client geocodes places and boundaries. Calls are synchronous; the only
// failure signal is the returned error.
type Client struct {
	Endpoint string
	httpc    *http.Client
}

// New returns a client against an explicit endpoint.
func New(endpoint string, timeout time.Duration) *Client {
	return &Client{
		Endpoint: endpoint,
		httpc:    &http.Client{Timeout: timeout},
	}
}

// NewFromConfig resolves the endpoint and HTTP timeout from config.
func NewFromConfig() *Client {
	endpoint, _ := config.GetString("nominatim.endpoint", DefaultEndpoint)
	timeout, _ := config.GetInt("http.timeout", 300)
	return New(endpoint, time.Duration(timeout)*time.Second)
}

// Boundary fetches the polygon geometry for a named place.
func (c *Client) Boundary(ctx context.Context, place string) (*Boundary, error) {
	body, err := c.search(ctx, place, url.Values{"polygon_geojson": {"1"}})
	if err != nil {
		return nil, err
	}

	first := gjson.GetBytes(body, "0")
	if !first.Exists() {
		return nil, fmt.Errorf("no boundary found for %q", place)
	}

	rawGeom := first.Get("geojson")
	if !rawGeom.Exists() {
		return nil, fmt.Errorf("boundary for %q has no geometry", place)
	}
	geom, err := geojson.UnmarshalGeometry([]byte(rawGeom.Raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode boundary geometry: %w", err)
	}

	b := &Boundary{
		DisplayName: first.Get("display_name").String(),
		Geometry:    geom,
	}
	for _, v := range first.Get("boundingbox").Array() {
		b.BoundingBox = append(b.BoundingBox, v.Float())
	}

	log.Debugf("boundary: %s", b.DisplayName)
	return b, nil
}

// Geocode resolves a free-form query to a coordinate.
func (c *Client) Geocode(ctx context.Context, query string) (lat, lon float64, err error) {
	body, err := c.search(ctx, query, nil)
	if err != nil {
		return 0, 0, err
	}

	first := gjson.GetBytes(body, "0")
	if !first.Exists() {
		return 0, 0, fmt.Errorf("no results for %q", query)
	}

	return first.Get("lat").Float(), first.Get("lon").Float(), nil
}

func (c *Client) search(ctx context.Context, query string, extra url.Values) ([]byte, error) {
	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}
	for k, vs := range extra {
		params[k] = vs
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.Endpoint+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "roadctl/"+version.Version)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned %s", resp.Status)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("nominatim returned invalid JSON")
	}

	return body, nil
}
