package model

import "time"

// FileInfo describes a local audio file picked up for batch transcription
type FileInfo struct {
	FullPath string
	ModTime  time.Time
	Name     string
	Size     int64
}
