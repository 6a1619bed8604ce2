/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package scheduling defines programme blocks and checks channel schedules
// for overlaps and oversized blocks.
package scheduling

import "time"

// Block is one programme on a channel. Start is always before End.
type Block struct {
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description,omitempty"`
}

// Duration returns End - Start.
func (b Block) Duration() time.Duration {
	return b.End.Sub(b.Start)
}

// Covers reports whether blocks are sorted, contiguous and span exactly
// [start, end).
func Covers(blocks []Block, start, end time.Time) bool {
	if len(blocks) == 0 {
		return !start.Before(end)
	}
	cursor := start
	for _, b := range blocks {
		if !b.Start.Equal(cursor) || !b.Start.Before(b.End) {
			return false
		}
		cursor = b.End
	}
	return cursor.Equal(end)
}
