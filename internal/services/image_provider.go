package services

import (
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "net/url"
  "os"
  "path/filepath"
  "time"

  "github.com/google/uuid"

  "github.com/dbrainio/presenton/internal/logger"
  "github.com/dbrainio/presenton/internal/types"
)

// ImageProvider fetches or generates one image for a prompt and stores it
// under destDir, returning the local file path.
type ImageProvider interface {
  FetchImage(ctx context.Context, prompt types.ImagePrompt, destDir string) (string, error)
}

type pexelsProvider struct {
  log        *logger.Logger
  apiKey     string
  httpClient *http.Client
}

func NewPexelsProvider(log *logger.Logger) (ImageProvider, error) {
  apiKey := os.Getenv("PEXELS_API_KEY")
  if apiKey == "" {
    return nil, fmt.Errorf("missing PEXELS_API_KEY")
  }
  return &pexelsProvider{
    log:        log.With("service", "PexelsProvider"),
    apiKey:     apiKey,
    httpClient: &http.Client{Timeout: 60 * time.Second},
  }, nil
}

type pexelsSearchResponse struct {
  Photos []struct {
    ID  int `json:"id"`
    Src struct {
      Large string `json:"large"`
    } `json:"src"`
  } `json:"photos"`
}

func (p *pexelsProvider) FetchImage(ctx context.Context, prompt types.ImagePrompt, destDir string) (string, error) {
  query := prompt.GetImagePrompt(true)

  searchURL := "https://api.pexels.com/v1/search?per_page=1&query=" + url.QueryEscape(query)
  req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
  if err != nil {
    return "", err
  }
  req.Header.Set("Authorization", p.apiKey)

  resp, err := p.httpClient.Do(req)
  if err != nil {
    return "", fmt.Errorf("pexels search: %w", err)
  }
  raw, readErr := io.ReadAll(resp.Body)
  _ = resp.Body.Close()
  if readErr != nil {
    return "", readErr
  }
  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    return "", fmt.Errorf("pexels search http %d: %s", resp.StatusCode, string(raw))
  }

  var search pexelsSearchResponse
  if err := json.Unmarshal(raw, &search); err != nil {
    return "", fmt.Errorf("pexels decode: %w", err)
  }
  if len(search.Photos) == 0 || search.Photos[0].Src.Large == "" {
    return "", fmt.Errorf("pexels: no photo for query %q", query)
  }

  return p.download(ctx, search.Photos[0].Src.Large, destDir)
}

func (p *pexelsProvider) download(ctx context.Context, imageURL, destDir string) (string, error) {
  req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
  if err != nil {
    return "", err
  }
  resp, err := p.httpClient.Do(req)
  if err != nil {
    return "", fmt.Errorf("image download: %w", err)
  }
  defer resp.Body.Close()
  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    return "", fmt.Errorf("image download http %d", resp.StatusCode)
  }

  if err := os.MkdirAll(destDir, 0o755); err != nil {
    return "", err
  }
  ext := filepath.Ext(imageURL)
  if ext == "" || len(ext) > 5 {
    ext = ".jpg"
  }
  localPath := filepath.Join(destDir, uuid.New().String()+ext)

  f, err := os.Create(localPath)
  if err != nil {
    return "", err
  }
  if _, err := io.Copy(f, resp.Body); err != nil {
    _ = f.Close()
    _ = os.Remove(localPath)
    return "", fmt.Errorf("image write: %w", err)
  }
  if err := f.Close(); err != nil {
    return "", err
  }
  return localPath, nil
}
