package storage

import (
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"path"
	"path/filepath"
)

// Archive copies a finished run's artifacts to <prefix>runs/<project>/
type Archive struct {
	store  ObjectStore
	bucket string
	prefix string
}

// NewArchive builds an archive over store
func NewArchive(store ObjectStore, bucket, prefix string) *Archive {
	return &Archive{store: store, bucket: bucket, prefix: prefix}
}

// Key returns the object key for a local file of projectID
func (a *Archive) Key(projectID, file string) string {
	return a.prefix + path.Join("runs", projectID, filepath.Base(file))
}

// Upload archives files, skipping empty paths and files that no longer
// exist. It returns the keys written and stops at the first upload error.
func (a *Archive) Upload(ctx context.Context, projectID string, files ...string) ([]string, error) {
	var keys []string
	for _, file := range files {
		if file == "" {
			continue
		}
		f, err := os.Open(file)
		if os.IsNotExist(err) {
			log.Printf("⚠️ Skipping missing artifact: %s", file)
			continue
		}
		if err != nil {
			return keys, fmt.Errorf("open artifact: %w", err)
		}

		key := a.Key(projectID, file)
		err = a.store.Put(ctx, a.bucket, key, f, mime.TypeByExtension(filepath.Ext(file)))
		f.Close()
		if err != nil {
			return keys, fmt.Errorf("upload %s: %w", key, err)
		}
		keys = append(keys, key)
	}

	log.Printf("☁️ Archived %d artifacts to s3://%s/%s", len(keys), a.bucket, a.prefix+path.Join("runs", projectID))
	return keys, nil
}

// Archived lists the keys already stored for projectID
func (a *Archive) Archived(ctx context.Context, projectID string) ([]string, error) {
	return a.store.List(ctx, a.bucket, a.prefix+path.Join("runs", projectID)+"/")
}
