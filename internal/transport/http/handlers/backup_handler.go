package handlers

import (
	"errors"
	"net/http"

	backupjob "github.com/Inkrex-dev/lab-dash-ex/internal/jobs/backup"
	pgrepo "github.com/Inkrex-dev/lab-dash-ex/internal/repo/postgres"
	"github.com/Inkrex-dev/lab-dash-ex/internal/transport/http/dto"
	httperrors "github.com/Inkrex-dev/lab-dash-ex/internal/transport/http/errors"
)

type BackupHandler struct {
	job *backupjob.Job
}

func NewBackupHandler(job *backupjob.Job) *BackupHandler {
	return &BackupHandler{job: job}
}

func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.job == nil {
		writeInternal(w, "BACKUP_UNAVAILABLE", "backup job is unavailable")
		return
	}

	rec, err := h.job.Run(r.Context())
	if err != nil {
		if errors.Is(err, backupjob.ErrNotConfigured) {
			httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{
				Code:    "BACKUP_NOT_CONFIGURED",
				Message: "backup storage is not configured",
			})
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.BackupStatusResponse{LastRun: toBackupInfo(rec)})
}

// Status reports the latest run; a store that never backed up is a normal
// empty status, not an error.
func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h.job == nil {
		writeInternal(w, "BACKUP_UNAVAILABLE", "backup job is unavailable")
		return
	}

	rec, err := h.job.Latest(r.Context())
	if err != nil {
		if errors.Is(err, pgrepo.ErrBackupNotFound) {
			httperrors.Write(w, http.StatusOK, dto.BackupStatusResponse{LastRun: nil})
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.BackupStatusResponse{LastRun: toBackupInfo(rec)})
}

func toBackupInfo(rec pgrepo.BackupRecord) *dto.BackupInfo {
	return &dto.BackupInfo{
		ObjectKey: rec.ObjectKey,
		SizeBytes: rec.SizeBytes,
		TakenAt:   rec.TakenAt,
	}
}
