package backup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	pgrepo "github.com/Inkrex-dev/lab-dash-ex/internal/repo/postgres"
	authsvc "github.com/Inkrex-dev/lab-dash-ex/internal/services/auth"
)

type fakeUploader struct {
	bucket string
	key    string
	body   []byte
	err    error
}

func (u *fakeUploader) PutObject(_ context.Context, bucketName, objectName string, reader io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	if u.err != nil {
		return minio.UploadInfo{}, u.err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	u.bucket = bucketName
	u.key = objectName
	u.body = body
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: int64(len(body))}, nil
}

type fakeListers struct {
	users      []authsvc.UserRecord
	notes      []pgrepo.NoteRecord
	dashboards []pgrepo.DashboardRecord
}

func (f *fakeListers) listUsers(_ context.Context) ([]authsvc.UserRecord, error) { return f.users, nil }

type userListerFunc func(ctx context.Context) ([]authsvc.UserRecord, error)

func (fn userListerFunc) ListAll(ctx context.Context) ([]authsvc.UserRecord, error) { return fn(ctx) }

type noteListerFunc func(ctx context.Context) ([]pgrepo.NoteRecord, error)

func (fn noteListerFunc) ListAll(ctx context.Context) ([]pgrepo.NoteRecord, error) { return fn(ctx) }

type dashboardListerFunc func(ctx context.Context) ([]pgrepo.DashboardRecord, error)

func (fn dashboardListerFunc) ListAll(ctx context.Context) ([]pgrepo.DashboardRecord, error) {
	return fn(ctx)
}

type fakeMetadataStore struct {
	records []pgrepo.BackupRecord
}

func (s *fakeMetadataStore) Record(_ context.Context, objectKey string, sizeBytes int64) (pgrepo.BackupRecord, error) {
	rec := pgrepo.BackupRecord{
		ID:        int64(len(s.records) + 1),
		ObjectKey: objectKey,
		SizeBytes: sizeBytes,
		TakenAt:   time.Now(),
	}
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *fakeMetadataStore) Latest(_ context.Context) (pgrepo.BackupRecord, error) {
	if len(s.records) == 0 {
		return pgrepo.BackupRecord{}, pgrepo.ErrBackupNotFound
	}
	return s.records[len(s.records)-1], nil
}

func newTestJob(uploader Uploader, data *fakeListers, metadata *fakeMetadataStore) *Job {
	return NewJob(
		uploader,
		userListerFunc(data.listUsers),
		noteListerFunc(func(context.Context) ([]pgrepo.NoteRecord, error) { return data.notes, nil }),
		dashboardListerFunc(func(context.Context) ([]pgrepo.DashboardRecord, error) { return data.dashboards, nil }),
		metadata,
		"test-bucket",
		"backups",
		nil,
	)
}

func TestRunUploadsSnapshot(t *testing.T) {
	ctx := context.Background()
	uploader := &fakeUploader{}
	metadata := &fakeMetadataStore{}
	data := &fakeListers{
		users: []authsvc.UserRecord{{
			ID:            1,
			Username:      "alice",
			PasswordHash:  "bcrypt-hash",
			Role:          "admin",
			RefreshTokens: []string{"tok"},
		}},
		notes: []pgrepo.NoteRecord{{
			ID:     uuid.New(),
			UserID: 1,
			Title:  "groceries",
			Body:   "milk",
		}},
		dashboards: []pgrepo.DashboardRecord{{
			UserID:   1,
			Settings: json.RawMessage(`{"theme":"dark"}`),
		}},
	}

	job := newTestJob(uploader, data, metadata)

	rec, err := job.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if uploader.bucket != "test-bucket" {
		t.Fatalf("bucket = %q, want test-bucket", uploader.bucket)
	}
	if !strings.HasPrefix(uploader.key, "backups/") || !strings.HasSuffix(uploader.key, ".json") {
		t.Fatalf("object key = %q", uploader.key)
	}
	if rec.ObjectKey != uploader.key {
		t.Fatalf("metadata key = %q, upload key = %q", rec.ObjectKey, uploader.key)
	}
	if rec.SizeBytes != int64(len(uploader.body)) {
		t.Fatalf("metadata size = %d, payload size = %d", rec.SizeBytes, len(uploader.body))
	}

	var snap struct {
		Users []map[string]any `json:"users"`
		Notes []map[string]any `json:"notes"`
	}
	if err := json.Unmarshal(uploader.body, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.Users) != 1 || len(snap.Notes) != 1 {
		t.Fatalf("snapshot counts: users=%d notes=%d", len(snap.Users), len(snap.Notes))
	}

	// Secrets never land in a snapshot.
	payload := string(uploader.body)
	if strings.Contains(payload, "bcrypt-hash") || strings.Contains(payload, "tok") {
		t.Fatal("snapshot leaked password hash or refresh token")
	}
}

func TestRunWithoutUploader(t *testing.T) {
	job := newTestJob(nil, &fakeListers{}, &fakeMetadataStore{})
	if _, err := job.Run(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestRunUploadFailure(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("network down")}
	metadata := &fakeMetadataStore{}
	job := newTestJob(uploader, &fakeListers{}, metadata)

	if _, err := job.Run(context.Background()); err == nil {
		t.Fatal("expected upload error")
	}
	if len(metadata.records) != 0 {
		t.Fatal("failed upload must not record metadata")
	}
}

func TestLatest(t *testing.T) {
	ctx := context.Background()
	metadata := &fakeMetadataStore{}
	job := newTestJob(&fakeUploader{}, &fakeListers{}, metadata)

	if _, err := job.Latest(ctx); !errors.Is(err, pgrepo.ErrBackupNotFound) {
		t.Fatalf("err = %v, want ErrBackupNotFound", err)
	}

	if _, err := job.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	rec, err := job.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if rec.ObjectKey == "" {
		t.Fatal("expected recorded object key")
	}
}

func TestObjectKeysAreUnique(t *testing.T) {
	ctx := context.Background()
	uploader := &fakeUploader{}
	job := newTestJob(uploader, &fakeListers{}, &fakeMetadataStore{})

	if _, err := job.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := uploader.key
	if _, err := job.Run(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if uploader.key == first {
		t.Fatal("expected distinct object keys per run")
	}
}
