package dto

import "time"

type BackupInfo struct {
	ObjectKey string    `json:"object_key"`
	SizeBytes int64     `json:"size_bytes"`
	TakenAt   time.Time `json:"taken_at"`
}

type BackupStatusResponse struct {
	LastRun *BackupInfo `json:"lastRun"`
}
