// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package report formats connectivity analysis results for the terminal.
package report
