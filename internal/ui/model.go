// Package ui provides the Bubbletea terminal progress display for drtool
package ui

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/drtool/internal/processor"
)

var debugLog *os.File

func init() {
	debugLog, _ = os.OpenFile("drtool-ui-debug.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

func log(format string, args ...interface{}) {
	if debugLog != nil {
		fmt.Fprintf(debugLog, format+"\n", args...)
	}
}

// FileStatus represents the scan state of a single audio file
type FileStatus int

const (
	StatusQueued FileStatus = iota
	StatusScanning
	StatusComplete
	StatusError
)

// FileProgress tracks progress for a single audio file
type FileProgress struct {
	InputPath string
	Status    FileStatus

	// Progress tracking (percentage-based, from the decoder)
	Progress    float64 // 0.0 to 1.0
	StartTime   time.Time
	ElapsedTime time.Duration

	// Result, populated once Status == StatusComplete
	Result *processor.TrackResult

	// Error tracking
	Error error
}

// Model is the Bubbletea model for the scan progress UI
type Model struct {
	// File queue
	Files          []FileProgress
	CurrentIndex   int
	TotalFiles     int
	CompletedFiles int
	FailedFiles    int

	// Global state
	StartTime time.Time
	Done      bool

	// Terminal dimensions
	Width  int
	Height int
}

// NewModel creates a new UI model with the given input files
func NewModel(inputFiles []string) Model {
	files := make([]FileProgress, len(inputFiles))
	for i, path := range inputFiles {
		files[i] = FileProgress{
			InputPath: path,
			Status:    StatusQueued,
		}
	}

	return Model{
		Files:        files,
		CurrentIndex: -1, // No file scanning yet
		TotalFiles:   len(inputFiles),
		StartTime:    time.Now(),
	}
}

// Init initializes the model. Progress arrives via tea.Program.Send from
// the scan goroutine in cmd/drtool, so there is nothing to kick off here.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		log("[DEBUG] Window size: %dx%d", m.Width, m.Height)

	case ProgressMsg:
		log("[DEBUG] ProgressMsg received: %.1f%%", msg.Progress*100)
		if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Files) {
			m.Files[m.CurrentIndex] = updateFileProgress(m.Files[m.CurrentIndex], msg)
		}
		return m, nil

	case FileStartMsg:
		log("[DEBUG] FileStartMsg received: index=%d, file=%s", msg.FileIndex, msg.FileName)
		m.CurrentIndex = msg.FileIndex
		m.Files[m.CurrentIndex].Status = StatusScanning
		m.Files[m.CurrentIndex].StartTime = time.Now()
		return m, nil

	case FileCompleteMsg:
		log("[DEBUG] FileCompleteMsg received: index=%d", msg.FileIndex)
		if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Files) {
			m.Files[m.CurrentIndex].Result = msg.Result
			m.Files[m.CurrentIndex].Error = msg.Error

			if msg.Error != nil {
				m.Files[m.CurrentIndex].Status = StatusError
				m.FailedFiles++
			} else {
				m.Files[m.CurrentIndex].Status = StatusComplete
				m.CompletedFiles++
			}
		}
		return m, nil

	case AllCompleteMsg:
		log("[DEBUG] AllCompleteMsg received")
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return fmt.Sprintf("Initializing...\nFiles: %d\nCurrent: %d\n", len(m.Files), m.CurrentIndex)
	}

	if m.Done {
		return renderCompletionSummary(m)
	}

	return renderScanView(m)
}

// updateFileProgress updates a FileProgress based on a ProgressMsg
func updateFileProgress(fp FileProgress, msg ProgressMsg) FileProgress {
	fp.Progress = msg.Progress
	fp.ElapsedTime = time.Since(fp.StartTime)
	fp.Status = StatusScanning
	return fp
}
