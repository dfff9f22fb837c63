// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package mapgen renders a road network as an interactive Leaflet HTML map.
package mapgen
