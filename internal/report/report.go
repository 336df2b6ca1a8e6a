// Package report writes the JSON summary of a simulation run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/CodexForgeBR/ballroute/internal/ejection"
	"github.com/CodexForgeBR/ballroute/internal/scoring"
)

// Motors is the last velocity commanded to each motor.
type Motors struct {
	Intake int `json:"intake"`
	Top    int `json:"top"`
	Left   int `json:"left"`
	Right  int `json:"right"`
}

// Report is the persisted outcome of one run.
type Report struct {
	Scenario        string                 `json:"scenario"`
	GeneratedAt     time.Time              `json:"generated_at"`
	Ticks           int                    `json:"ticks"`
	ElapsedMS       int64                  `json:"elapsed_ms"`
	Interrupted     bool                   `json:"interrupted"`
	Coordinator     scoring.Status         `json:"coordinator"`
	Flow            string                 `json:"flow"`
	Sorting         ejection.SortingPolicy `json:"sorting"`
	EjectDurationMS int64                  `json:"eject_duration_ms"`
	EjectionReady   bool                   `json:"ejection_functional"`
	Statistics      ejection.Statistics    `json:"statistics"`
	Motors          Motors                 `json:"motors"`
	Screen          [3]string              `json:"screen"`
}

// Write persists r as indented JSON, creating parent directories.
func Write(r Report, path string) error {
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}

	return nil
}
