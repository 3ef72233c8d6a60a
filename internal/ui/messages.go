package ui

import (
	"github.com/linuxmatters/drtool/internal/processor"
)

// ProgressMsg represents a progress update from the scan loop
type ProgressMsg struct {
	Progress float64 // 0.0 to 1.0
}

// FileStartMsg indicates a new file has started scanning
type FileStartMsg struct {
	FileIndex int
	FileName  string
}

// FileCompleteMsg indicates a file has finished scanning
type FileCompleteMsg struct {
	FileIndex int
	Result    *processor.TrackResult
	Error     error
}

// AllCompleteMsg indicates all files have been scanned
type AllCompleteMsg struct{}
