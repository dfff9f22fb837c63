// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package overpass

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/tidwall/gjson"

	"github.com/bdgeo/roadctl/internal/config"
	"github.com/bdgeo/roadctl/internal/roadnet"
	"github.com/bdgeo/roadctl/internal/version"
)

// DefaultEndpoint is the public Overpass API interpreter.
const DefaultEndpoint = "https://overpass-api.de/api/interpreter"

// Network types accepted by RoadNetwork.
var NetworkTypes = []string{"drive", "walk", "bike", "all"}

// highwayFilters maps a network type to the Overpass highway-tag regex.
// Mirrors the usual OSM routing profiles, not an exhaustive taxonomy.
var highwayFilters = map[string]string{
	"drive": "motorway|motorway_link|trunk|trunk_link|primary|primary_link|" +
		"secondary|secondary_link|tertiary|tertiary_link|unclassified|residential|living_street",
	"walk": "footway|pedestrian|path|steps|living_street|residential|unclassified|track|service",
	"bike": "cycleway|residential|unclassified|tertiary|tertiary_link|secondary|" +
		"secondary_link|primary|primary_link|living_street|track",
	"all": "",
}

// Client fetches road networks from an Overpass API endpoint. Calls are
// synchronous; the only failure signal is the returned error.
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
	endpoint, _ := config.GetString("overpass.endpoint", DefaultEndpoint)
	timeout, _ := config.GetInt("http.timeout", 300)
	return New(endpoint, time.Duration(timeout)*time.Second)
}

// RoadNetwork downloads all highway ways for the named place and builds the
// attributed graph: a node per OSM way vertex, an edge per consecutive vertex
// pair, lengths in haversine meters.
func (c *Client) RoadNetwork(ctx context.Context, place, networkType string) (*roadnet.Network, error) {
	query, err := buildQuery(place, networkType)
	if err != nil {
		return nil, err
	}
	log.Debugf("overpass query: %s", query)

	body, err := c.post(ctx, query)
	if err != nil {
		return nil, err
	}

	return parseNetwork(body, place, networkType)
}

func buildQuery(place, networkType string) (string, error) {
	filter, ok := highwayFilters[networkType]
	if !ok {
		return "", fmt.Errorf("unknown network type %q (want one of %v)", networkType, NetworkTypes)
	}

	selector := `["highway"]`
	if filter != "" {
		selector = fmt.Sprintf(`["highway"~"^(%s)$"]`, filter)
	}

	return fmt.Sprintf(
		`[out:json][timeout:600];area["name"=%q]->.a;way(area.a)%s;out body geom;`,
		place, selector), nil
}

func (c *Client) post(ctx context.Context, query string) ([]byte, error) {
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
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
		return nil, fmt.Errorf("overpass returned %s: %s", resp.Status, firstLine(body))
	}

	return body, nil
}

func parseNetwork(body []byte, place, networkType string) (*roadnet.Network, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("overpass returned invalid JSON")
	}

	doc := gjson.ParseBytes(body)
	if remark := doc.Get("remark"); remark.Exists() && strings.Contains(remark.String(), "error") {
		return nil, fmt.Errorf("overpass remark: %s", remark.String())
	}

	n := roadnet.New(place, networkType)

	doc.Get("elements").ForEach(func(_, el gjson.Result) bool {
		if el.Get("type").String() != "way" {
			return true
		}

		ids := el.Get("nodes").Array()
		coords := el.Get("geometry").Array()
		if len(ids) != len(coords) || len(ids) < 2 {
			return true
		}

		// Overpass joins multiple tag values with ';'.
		classTags := strings.Split(el.Get("tags.highway").String(), ";")
		name := el.Get("tags.name").String()

		for i := range ids {
			n.AddNode(roadnet.Node{
				ID:  ids[i].Int(),
				Lat: coords[i].Get("lat").Float(),
				Lon: coords[i].Get("lon").Float(),
			})
			if i == 0 {
				continue
			}
			length := geo.Distance(
				orb.Point{coords[i-1].Get("lon").Float(), coords[i-1].Get("lat").Float()},
				orb.Point{coords[i].Get("lon").Float(), coords[i].Get("lat").Float()},
			)
			n.AddEdge(ids[i-1].Int(), ids[i].Int(), length, name, classTags...)
		}

		return true
	})

	if len(n.Nodes) == 0 {
		return nil, fmt.Errorf("overpass returned no ways for %q (%s)", place, networkType)
	}

	return n, nil
}

func firstLine(body []byte) string {
	s := strings.TrimSpace(string(body))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
