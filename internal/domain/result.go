package domain

import "time"

// DownloadResult is produced by the acquisition chain on success. The
// file at FilePath is owned by the caller until explicitly deleted;
// it is consumed at most once.
type DownloadResult struct {
	FilePath string
	// InfoPath is the JSON info sidecar written by the acquisition
	// tool, when one was produced. Empty for relay downloads.
	InfoPath string
	// Strategy names the stage that produced the file.
	Strategy string
	// ThumbPath is a generated preview image, when one could be made.
	ThumbPath string
	Platform  Platform
}

// MediaInfo is a read-only snapshot of a local media file. Recomputed
// whenever needed, never persisted.
type MediaInfo struct {
	Width    int
	Height   int
	Duration float64
	PixFmt   string
	Codec    string
	HasAudio bool
	Size     int64
}

// Acquisition is a historical record of a pipeline run.
type Acquisition struct {
	ID         string
	URL        string
	Platform   Platform
	Strategy   string
	FilePath   string
	SizeBytes  int64
	Duration   float64
	Err        string
	FinishedAt time.Time
}
