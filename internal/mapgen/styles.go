// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package mapgen

// Style is the Leaflet polyline styling for one road classification.
type Style struct {
	Color   string  `json:"color"`
	Weight  float64 `json:"weight"`
	Opacity float64 `json:"opacity"`
}

var classStyles = map[string]Style{
	"motorway":    {Color: "#FF0000", Weight: 4, Opacity: 0.8},
	"trunk":       {Color: "#FF4500", Weight: 3, Opacity: 0.8},
	"primary":     {Color: "#FFA500", Weight: 2.5, Opacity: 0.7},
	"secondary":   {Color: "#FFFF00", Weight: 2, Opacity: 0.6},
	"tertiary":    {Color: "#90EE90", Weight: 1.5, Opacity: 0.5},
	"residential": {Color: "#87CEEB", Weight: 1, Opacity: 0.4},
}

var defaultStyle = Style{Color: "#808080", Weight: 1, Opacity: 0.3}

// StyleFor returns the styling for a road classification, falling back to a
// muted gray for anything outside the known hierarchy.
func StyleFor(class string) Style {
	if s, ok := classStyles[class]; ok {
		return s
	}
	return defaultStyle
}
