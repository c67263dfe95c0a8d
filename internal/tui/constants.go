package tui

import "time"

const (
	// Timeouts and Intervals
	minEventInterval = 20 * time.Millisecond
	noticeTimeout    = 3 * time.Second

	// Layout
	glyphColWidth    = 4
	sizeColWidth     = 10
	createdColWidth  = 16
	minBoxWidth      = 44
	maxProgressWidth = 60
)
