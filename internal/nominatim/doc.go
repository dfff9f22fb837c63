// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package nominatim geocodes place names and fetches administrative
// boundaries from the Nominatim API.
package nominatim
