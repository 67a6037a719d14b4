package services

import (
  "context"
  "encoding/json"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/datatypes"

  "github.com/dbrainio/presenton/internal/logger"
  "github.com/dbrainio/presenton/internal/types"
)

// Content nodes describing images carry these reserved keys. The generator
// writes __image_prompt__; reconciliation resolves it and rewrites
// __image_url__ in place.
const (
  imagePromptKey = "__image_prompt__"
  imageURLKey    = "__image_url__"
)

// AssetCoordinator decides which visual assets must be (re)generated between
// an old and a new version of slide content, fetches them, and returns the
// created asset records. It never persists anything itself; the caller writes
// the returned assets in the same transaction as the slide mutation.
type AssetCoordinator interface {
  // Reconcile may mutate newContent in place, rewriting resolved image
  // references. Callers must re-read newContent after the call. oldContent is
  // nil on create.
  Reconcile(ctx context.Context, presentationID uuid.UUID, oldContent, newContent map[string]any) ([]*types.ImageAsset, error)
}

type assetCoordinator struct {
  log       *logger.Logger
  provider  ImageProvider
  bucket    BucketService
  imagesDir string
}

// NewAssetCoordinator builds the coordinator. provider may be nil, in which
// case reconciliation is a no-op (image fetching disabled).
func NewAssetCoordinator(log *logger.Logger, provider ImageProvider, bucket BucketService, imagesDir string) AssetCoordinator {
  return &assetCoordinator{
    log:       log.With("service", "AssetCoordinator"),
    provider:  provider,
    bucket:    bucket,
    imagesDir: imagesDir,
  }
}

type imageNode struct {
  node   map[string]any
  prompt string
}

// collectImageNodes walks a content document depth-first and returns every
// node carrying an image prompt, in stable traversal order of slices.
func collectImageNodes(value any, out *[]imageNode) {
  switch v := value.(type) {
  case map[string]any:
    if prompt, ok := v[imagePromptKey].(string); ok && prompt != "" {
      *out = append(*out, imageNode{node: v, prompt: prompt})
    }
    for _, child := range v {
      collectImageNodes(child, out)
    }
  case []any:
    for _, child := range v {
      collectImageNodes(child, out)
    }
  }
}

func (a *assetCoordinator) Reconcile(ctx context.Context, presentationID uuid.UUID, oldContent, newContent map[string]any) ([]*types.ImageAsset, error) {
  if a.provider == nil {
    return nil, nil
  }

  var newNodes []imageNode
  collectImageNodes(newContent, &newNodes)
  if len(newNodes) == 0 {
    return nil, nil
  }

  // Resolved URLs of prompts already present in the old content; untouched
  // prompts keep those URLs instead of regenerating.
  oldURLs := map[string]string{}
  if oldContent != nil {
    var oldNodes []imageNode
    collectImageNodes(oldContent, &oldNodes)
    for _, n := range oldNodes {
      if url, ok := n.node[imageURLKey].(string); ok && url != "" {
        oldURLs[n.prompt] = url
      }
    }
  }

  presID := presentationID.String()
  var created []*types.ImageAsset
  for _, n := range newNodes {
    if url, ok := oldURLs[n.prompt]; ok {
      n.node[imageURLKey] = url
      continue
    }

    prompt := types.ImagePrompt{Prompt: n.prompt, PresentationID: &presID}
    localPath, err := a.provider.FetchImage(ctx, prompt, a.imagesDir)
    if err != nil {
      return nil, fmt.Errorf("%w: image fetch for %q: %v", ErrGenerationFailed, n.prompt, err)
    }

    asset := &types.ImageAsset{
      ID:   uuid.New(),
      Path: localPath,
    }
    resolved := localPath
    if a.bucket != nil {
      key, uploaded, err := a.bucket.Upload(ctx, localPath, "presentations/"+presID)
      if err != nil {
        a.log.Warn("Asset upload failed, keeping local path", "error", err, "path", localPath)
      } else if uploaded {
        asset.IsUploaded = true
        publicURL := a.bucket.PublicURL(key)
        asset.StorageURL = &publicURL
        resolved = publicURL
      }
    }

    extras, _ := json.Marshal(map[string]any{"prompt": n.prompt, "presentation_id": presID})
    asset.Extras = datatypes.JSON(extras)

    n.node[imageURLKey] = resolved
    created = append(created, asset)
  }

  return created, nil
}
