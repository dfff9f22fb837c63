// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package artifact memoizes expensive pipeline products (network, boundary,
// statistics) through the cache store. Producers load before they compute and
// never retry a failed upstream call.
package artifact
