// Package catalog provides the file listing shown by tidyfiles and the
// sources it is fetched from.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for catalog data.
var (
	ErrInvalidStatus = errors.New("invalid file status")
	ErrDuplicateID   = errors.New("duplicate file id")
	ErrMissingPath   = errors.New("file path is empty")
)

// Status is the download status of a file.
type Status string

// Known file statuses.
const (
	// StatusAvailable files can be downloaded.
	StatusAvailable Status = "available"
	// StatusScheduled files are queued on the device and cannot be selected.
	StatusScheduled Status = "scheduled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusAvailable || s == StatusScheduled
}

// File is one row of the listing.
type File struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Device string `yaml:"device"`
	Path   string `yaml:"path"`
	Status Status `yaml:"status"`
}

// Result is what a fetch resolves to. Total is the row count reported by
// the source and may differ from len(Files).
type Result struct {
	Files []File
	Total int
}

// Source fetches the file listing.
type Source interface {
	Fetch(ctx context.Context) (Result, error)
}

// Normalize fills missing ids from device and path and validates the
// listing.
func Normalize(files []File) ([]File, error) {
	out := make([]File, len(files))
	seen := make(map[string]bool, len(files))

	for i, f := range files {
		if f.Path == "" {
			return nil, fmt.Errorf("file %d (%s): %w", i, f.Name, ErrMissingPath)
		}

		if !f.Status.Valid() {
			return nil, fmt.Errorf("file %s: %w: %q", f.Path, ErrInvalidStatus, f.Status)
		}

		if f.ID == "" {
			f.ID = f.Device + ":" + f.Path
		}

		if seen[f.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, f.ID)
		}

		seen[f.ID] = true
		out[i] = f
	}

	return out, nil
}

// Static serves a fixed listing.
type Static struct {
	Files []File
}

// Fetch returns a copy of the listing.
func (s Static) Fetch(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	files, err := Normalize(s.Files)
	if err != nil {
		return Result{}, err
	}

	return Result{Files: files, Total: len(files)}, nil
}

// Delayed wraps a source with simulated network latency.
type Delayed struct {
	Source Source
	Delay  time.Duration
}

// Fetch waits for the delay, or until ctx is done, then fetches.
func (d Delayed) Fetch(ctx context.Context) (Result, error) {
	if d.Delay > 0 {
		timer := time.NewTimer(d.Delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return Result{}, fmt.Errorf("waiting for catalog: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return d.Source.Fetch(ctx)
}

// Sample returns the built-in listing used when no catalog file is configured.
func Sample() []File {
	return []File{
		{Name: "smss.exe", Device: "Stark", Path: `\Device\HarddiskVolume2\Windows\System32\smss.exe`, Status: StatusScheduled},
		{Name: "netsh.exe", Device: "Targaryen", Path: `\Device\HarddiskVolume2\Windows\System32\netsh.exe`, Status: StatusAvailable},
		{Name: "uxtheme.dll", Device: "Lannister", Path: `\Device\HarddiskVolume1\Windows\System32\uxtheme.dll`, Status: StatusAvailable},
		{Name: "cryptbase.dll", Device: "Martell", Path: `\Device\HarddiskVolume1\Windows\System32\cryptbase.dll`, Status: StatusScheduled},
		{Name: "7za.exe", Device: "Baratheon", Path: `\Device\HarddiskVolume1\temp\7za.exe`, Status: StatusScheduled},
	}
}
