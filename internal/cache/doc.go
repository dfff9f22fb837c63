// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache persists the pipeline's three artifacts (road network,
// district boundaries, connectivity stats) as versioned JSON files in a
// per-user cache directory, with an optional S3 mirror for sharing a
// populated cache between machines.
package cache
