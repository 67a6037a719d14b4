package services

import (
  "context"
  "fmt"
  "io"
  "os"
  "path/filepath"
  "strings"
  "sync"
  "time"

  "cloud.google.com/go/storage"
  "google.golang.org/api/option"

  "github.com/dbrainio/presenton/internal/logger"
)

// BucketService moves generated image files to and from object storage.
// Storage is optional: when GCS_BUCKET_NAME is unset every operation reports
// ok=false without error and assets stay on the local filesystem.
type BucketService interface {
  Upload(ctx context.Context, localPath, keyHint string) (objectKey string, ok bool, err error)
  Download(ctx context.Context, objectKey, localPath string) (string, bool, error)
  PublicURL(objectKey string) string
  Enabled() bool
}

type bucketService struct {
  log        *logger.Logger
  bucketName string
  keyPrefix  string
  cdnDomain  string

  clientOnce sync.Once
  client     *storage.Client
  clientErr  error
}

func NewBucketService(log *logger.Logger) BucketService {
  serviceLog := log.With("service", "BucketService")
  bucket := strings.TrimSpace(os.Getenv("GCS_BUCKET_NAME"))
  if bucket == "" {
    serviceLog.Warn("GCS_BUCKET_NAME not set, object storage disabled")
  }
  return &bucketService{
    log:        serviceLog,
    bucketName: bucket,
    keyPrefix:  strings.Trim(os.Getenv("OBJECT_STORAGE_PREFIX"), "/"),
    cdnDomain:  os.Getenv("CDN_DOMAIN"),
  }
}

func (bs *bucketService) Enabled() bool {
  return bs.bucketName != ""
}

// getClient builds the process-wide storage handle on first use.
func (bs *bucketService) getClient(ctx context.Context) (*storage.Client, error) {
  bs.clientOnce.Do(func() {
    saPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")
    var err error
    if saPath != "" {
      bs.client, err = storage.NewClient(ctx, option.WithCredentialsFile(saPath), option.WithScopes(storage.ScopeReadWrite))
    } else {
      bs.client, err = storage.NewClient(ctx, option.WithScopes(storage.ScopeReadWrite))
    }
    if err != nil {
      bs.clientErr = fmt.Errorf("Failed to create storage client: %w", err)
    }
  })
  return bs.client, bs.clientErr
}

// Upload stores a local file under <prefix>/<keyHint>/<filename> and returns
// the object key. Missing prefix or keyHint segments are simply skipped.
func (bs *bucketService) Upload(ctx context.Context, localPath, keyHint string) (string, bool, error) {
  if !bs.Enabled() {
    return "", false, nil
  }
  client, err := bs.getClient(ctx)
  if err != nil {
    return "", false, err
  }

  keyParts := []string{}
  if bs.keyPrefix != "" {
    keyParts = append(keyParts, bs.keyPrefix)
  }
  if keyHint != "" {
    keyParts = append(keyParts, strings.Trim(keyHint, "/"))
  }
  keyParts = append(keyParts, filepath.Base(localPath))
  key := strings.Join(keyParts, "/")

  f, err := os.Open(localPath)
  if err != nil {
    return "", false, err
  }
  defer f.Close()

  ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
  defer cancel()
  w := client.Bucket(bs.bucketName).Object(key).NewWriter(ctx)
  if _, err := io.Copy(w, f); err != nil {
    _ = w.Close()
    return "", false, fmt.Errorf("Failed to write data to GCS: %w", err)
  }
  if err := w.Close(); err != nil {
    return "", false, fmt.Errorf("Failed to close GCS writer: %w", err)
  }
  return key, true, nil
}

func (bs *bucketService) Download(ctx context.Context, objectKey, localPath string) (string, bool, error) {
  if !bs.Enabled() {
    return "", false, nil
  }
  client, err := bs.getClient(ctx)
  if err != nil {
    return "", false, err
  }

  ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
  defer cancel()
  r, err := client.Bucket(bs.bucketName).Object(objectKey).NewReader(ctx)
  if err != nil {
    return "", false, fmt.Errorf("Failed to open GCS object %q: %w", objectKey, err)
  }
  defer r.Close()

  if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
    return "", false, err
  }
  f, err := os.Create(localPath)
  if err != nil {
    return "", false, err
  }
  if _, err := io.Copy(f, r); err != nil {
    _ = f.Close()
    return "", false, fmt.Errorf("Failed to write local file: %w", err)
  }
  if err := f.Close(); err != nil {
    return "", false, err
  }
  return localPath, true, nil
}

func (bs *bucketService) PublicURL(objectKey string) string {
  if bs.cdnDomain != "" {
    return fmt.Sprintf("https://%s/%s", bs.cdnDomain, objectKey)
  }
  return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bs.bucketName, objectKey)
}
