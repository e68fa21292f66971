package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lib/pq"

	"robojobs/youtube"
)

type fakeStore struct {
	objects map[string][]byte
	types   map[string]string
	failKey string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeStore) Put(_ context.Context, bucket, key string, body io.Reader, contentType string) error {
	if key == f.failKey {
		return errors.New("access denied")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[bucket+"/"+key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakeStore) Exists(_ context.Context, bucket, key string) (bool, error) {
	_, ok := f.objects[bucket+"/"+key]
	return ok, nil
}

func (f *fakeStore) List(_ context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, bucket+"/"+prefix) {
			keys = append(keys, strings.TrimPrefix(k, bucket+"/"))
		}
	}
	return keys, nil
}

func TestArchiveUpload(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "video_1_20260301_090000.mp4")
	meta := filepath.Join(dir, "video_1_metadata.json")
	for _, p := range []string{video, meta} {
		if err := os.WriteFile(p, []byte("content of "+filepath.Base(p)), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	store := newFakeStore()
	a := NewArchive(store, "bucket", "robojobs/")

	keys, err := a.Upload(context.Background(), "video_1", video, "", meta, filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	want := []string{
		"robojobs/runs/video_1/video_1_20260301_090000.mp4",
		"robojobs/runs/video_1/video_1_metadata.json",
	}
	if strings.Join(keys, ",") != strings.Join(want, ",") {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	if got := store.objects["bucket/"+want[1]]; !bytes.Equal(got, []byte("content of video_1_metadata.json")) {
		t.Errorf("stored body = %q", got)
	}
	if ct := store.types[want[1]]; !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type = %q", ct)
	}

	archived, err := a.Archived(context.Background(), "video_1")
	if err != nil || len(archived) != 2 {
		t.Errorf("Archived = %v, %v", archived, err)
	}
}

func TestArchiveUploadError(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.json")
	second := filepath.Join(dir, "b.json")
	for _, p := range []string{first, second} {
		if err := os.WriteFile(p, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	store := newFakeStore()
	store.failKey = "runs/p/b.json"
	a := NewArchive(store, "bucket", "")

	keys, err := a.Upload(context.Background(), "p", first, second)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(keys) != 1 || keys[0] != "runs/p/a.json" {
		t.Errorf("keys = %v", keys)
	}
}

func TestInsertUploadQuery(t *testing.T) {
	query, args, err := insertUpload(youtube.Upload{
		VideoID:    "vid1",
		Title:      "Robots",
		UploadTime: "2026-03-01T09:00:00Z",
		Privacy:    "private",
		LocalPath:  "output/video_1.mp4",
	}).ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	if !strings.HasPrefix(query, "INSERT INTO youtube_uploads (video_id,title,privacy,local_path,uploaded_at) VALUES ($1,$2,$3,$4,$5)") {
		t.Errorf("query = %q", query)
	}
	if !strings.Contains(query, "ON CONFLICT (video_id) DO UPDATE") {
		t.Errorf("query missing upsert: %q", query)
	}
	if len(args) != 5 || args[0] != "vid1" || args[3] != "output/video_1.mp4" {
		t.Errorf("args = %v", args)
	}
}

func TestSelectQueries(t *testing.T) {
	t.Run("uploaded", func(t *testing.T) {
		query, args, err := uploadedPaths([]string{"a.mp4", "b.mp4"}).ToSql()
		if err != nil {
			t.Fatalf("ToSql: %v", err)
		}
		if query != "SELECT local_path FROM youtube_uploads WHERE local_path = ANY($1)" {
			t.Errorf("query = %q", query)
		}
		arr, ok := args[0].(pq.StringArray)
		if !ok || len(arr) != 2 {
			t.Errorf("args = %#v", args)
		}
	})

	t.Run("recent", func(t *testing.T) {
		query, _, err := recentUploads(10).ToSql()
		if err != nil {
			t.Fatalf("ToSql: %v", err)
		}
		if !strings.Contains(query, "ORDER BY uploaded_at DESC") || !strings.Contains(query, "LIMIT 10") {
			t.Errorf("query = %q", query)
		}
	})
}

func TestNilDatabaseIsNoop(t *testing.T) {
	repo := NewHistoryRepository(nil)
	if err := repo.RecordUpload(context.Background(), youtube.Upload{VideoID: "x"}); err != nil {
		t.Fatalf("RecordUpload: %v", err)
	}
	got, err := repo.Uploaded(context.Background(), []string{"a"})
	if err != nil || len(got) != 0 {
		t.Fatalf("Uploaded = %v, %v", got, err)
	}
}
