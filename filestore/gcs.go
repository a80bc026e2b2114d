package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"bookmarket/logger"
)

const gcsPublicHost = "https://storage.googleapis.com/"

// GCS stores files in a Google Cloud Storage bucket and hands out public URLs.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS connects and checks that the bucket is reachable. credentialsFile
// may be empty to use application default credentials.
func NewGCS(ctx context.Context, bucket, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect google cloud storage: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("bucket %s not reachable: %w", bucket, err)
	}
	logger.L().Info("google cloud storage ready", zap.String("bucket", bucket))
	return &GCS{client: client, bucket: bucket}, nil
}

func (g *GCS) Save(ctx context.Context, f Upload, folder string) (string, error) {
	name := objectName(folder, f)

	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType(f)
	if _, err := io.Copy(w, f.Reader); err != nil {
		w.Close()
		return "", fmt.Errorf("copy file to gcs: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close gcs writer: %w", err)
	}

	return gcsPublicHost + g.bucket + "/" + name, nil
}

// Remove deletes the object behind ref. A missing object is not an error.
func (g *GCS) Remove(ctx context.Context, ref string) error {
	name, ok := g.objectFromURL(ref)
	if !ok {
		return fmt.Errorf("reference %q is not in bucket %s", ref, g.bucket)
	}
	err := g.client.Bucket(g.bucket).Object(name).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (g *GCS) objectFromURL(ref string) (string, bool) {
	prefix := gcsPublicHost + g.bucket + "/"
	if !strings.HasPrefix(ref, prefix) || len(ref) == len(prefix) {
		return "", false
	}
	return strings.TrimPrefix(ref, prefix), true
}

func (g *GCS) Close() error {
	return g.client.Close()
}
