package services

import (
  "bytes"
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "io"
  "math/rand"
  "net"
  "net/http"
  "os"
  "strconv"
  "strings"
  "time"

  "github.com/dbrainio/presenton/internal/logger"
  "github.com/dbrainio/presenton/internal/types"
  "github.com/dbrainio/presenton/internal/utils"
)

type openAIGenerator struct {
  log        *logger.Logger
  baseURL    string
  apiKey     string
  model      string
  httpClient *http.Client

  maxRetries int
}

func NewOpenAIGenerator(log *logger.Logger) (SlideGenerator, error) {
  apiKey := os.Getenv("OPENAI_API_KEY")
  if apiKey == "" {
    return nil, fmt.Errorf("missing OPENAI_API_KEY")
  }

  baseURL := os.Getenv("OPENAI_BASE_URL")
  if baseURL == "" {
    baseURL = "https://api.openai.com"
  }

  model := os.Getenv("OPENAI_MODEL")
  if model == "" {
    model = "gpt-4.1"
  }

  // IMPORTANT: default timeout higher for generation workloads
  timeoutSec := utils.GetEnvAsInt("OPENAI_TIMEOUT_SECONDS", 180, log)
  if timeoutSec <= 0 {
    timeoutSec = 180
  }
  maxRetries := utils.GetEnvAsInt("OPENAI_MAX_RETRIES", 4, log)
  if maxRetries < 0 {
    maxRetries = 4
  }

  return &openAIGenerator{
    log:        log.With("service", "OpenAIGenerator"),
    baseURL:    baseURL,
    apiKey:     apiKey,
    model:      model,
    httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
    maxRetries: maxRetries,
  }, nil
}

type openAIHTTPError struct {
  StatusCode int
  Body       string
}

func (e *openAIHTTPError) Error() string {
  return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func isRetryableHTTP(code int) bool {
  if code == 408 || code == 429 {
    return true
  }
  if code >= 500 && code <= 599 {
    return true
  }
  return false
}

func isRetryableErr(err error) bool {
  if err == nil {
    return false
  }
  var netErr net.Error
  if errors.As(err, &netErr) {
    if netErr.Timeout() {
      return true
    }
  }
  var httpErr *openAIHTTPError
  if errors.As(err, &httpErr) {
    return isRetryableHTTP(httpErr.StatusCode)
  }
  return false
}

func jitterSleep(base time.Duration) time.Duration {
  // +/- 20%
  if base <= 0 {
    return 0
  }
  j := 0.2
  delta := base.Seconds() * j
  low := base.Seconds() - delta
  high := base.Seconds() + delta
  if low < 0 {
    low = 0
  }
  v := low + rand.Float64()*(high-low)
  return time.Duration(v * float64(time.Second))
}

func (c *openAIGenerator) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
  var buf bytes.Buffer
  if body != nil {
    if err := json.NewEncoder(&buf).Encode(body); err != nil {
      return nil, nil, err
    }
  }

  req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
  if err != nil {
    return nil, nil, err
  }
  req.Header.Set("Authorization", "Bearer "+c.apiKey)
  req.Header.Set("Content-Type", "application/json")

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return nil, nil, err
  }

  raw, readErr := io.ReadAll(resp.Body)
  _ = resp.Body.Close()
  if readErr != nil {
    return resp, nil, readErr
  }

  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    return resp, raw, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
  }
  return resp, raw, nil
}

func (c *openAIGenerator) do(ctx context.Context, method, path string, body any, out any) error {
  // exponential backoff: 1s, 2s, 4s, 8s (cap ~10s)
  backoff := 1 * time.Second

  for attempt := 0; attempt <= c.maxRetries; attempt++ {
    if ctx.Err() != nil {
      return ctx.Err()
    }

    resp, raw, err := c.doOnce(ctx, method, path, body)
    if err == nil {
      if out == nil {
        return nil
      }
      if uErr := json.Unmarshal(raw, out); uErr != nil {
        return fmt.Errorf("openai decode error: %w; raw=%s", uErr, string(raw))
      }
      return nil
    }

    // Caller cancellation is never retried, even when the transport error
    // itself looks retryable.
    if ctx.Err() != nil {
      return ctx.Err()
    }
    if !isRetryableErr(err) {
      return err
    }

    if attempt == c.maxRetries {
      return err
    }

    // Respect Retry-After when present
    sleepFor := backoff
    if resp != nil {
      ra := strings.TrimSpace(resp.Header.Get("Retry-After"))
      if ra != "" {
        if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
          sleepFor = time.Duration(secs) * time.Second
        }
      }
    }

    if sleepFor > 10*time.Second {
      sleepFor = 10 * time.Second
    }
    sleepFor = jitterSleep(sleepFor)

    c.log.Warn("OpenAI request retrying",
      "path", path,
      "attempt", attempt+1,
      "max_retries", c.maxRetries,
      "sleep", sleepFor.String(),
      "error", err.Error(),
    )

    select {
    case <-ctx.Done():
      return ctx.Err()
    case <-time.After(sleepFor):
    }
    backoff *= 2
  }

  return fmt.Errorf("unreachable retry loop")
}

// ---- Responses (Structured Outputs via text.format json_schema) ----

type responsesRequest struct {
  Model string `json:"model"`
  Input []struct {
    Role    string `json:"role"`
    Content string `json:"content"`
  } `json:"input"`
  Text *struct {
    Format map[string]any `json:"format"`
  } `json:"text,omitempty"`
  Temperature float64 `json:"temperature,omitempty"`
}

type responsesResponse struct {
  Output []struct {
    Type    string `json:"type"`
    Role    string `json:"role,omitempty"`
    Content []struct {
      Type string `json:"type"`
      Text string `json:"text,omitempty"`
    } `json:"content,omitempty"`
  } `json:"output"`
  Refusal string `json:"refusal,omitempty"`
}

func (c *openAIGenerator) generate(ctx context.Context, system, user, schemaName string, schema map[string]any) (string, error) {
  req := responsesRequest{
    Model: c.model,
    Input: []struct {
      Role    string `json:"role"`
      Content string `json:"content"`
    }{
      {Role: "system", Content: system},
      {Role: "user", Content: user},
    },
    Temperature: 0.2,
  }
  if schema != nil {
    req.Text = &struct {
      Format map[string]any `json:"format"`
    }{
      Format: map[string]any{
        "type":   "json_schema",
        "name":   schemaName,
        "schema": schema,
        "strict": true,
      },
    }
  }

  var resp responsesResponse
  if err := c.do(ctx, "POST", "/v1/responses", req, &resp); err != nil {
    return "", err
  }
  if resp.Refusal != "" {
    return "", fmt.Errorf("model refused: %s", resp.Refusal)
  }

  var text string
  for _, item := range resp.Output {
    if item.Type == "message" && item.Role == "assistant" {
      for _, part := range item.Content {
        if part.Type == "output_text" && part.Text != "" {
          text += part.Text
        }
      }
    }
  }
  if text == "" {
    return "", fmt.Errorf("no output_text found in response")
  }
  return text, nil
}

func (c *openAIGenerator) generateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
  text, err := c.generate(ctx, system, user, schemaName, schema)
  if err != nil {
    return nil, err
  }
  var obj map[string]any
  if err := json.Unmarshal([]byte(text), &obj); err != nil {
    return nil, fmt.Errorf("failed to parse model JSON: %w; text=%s", err, text)
  }
  return obj, nil
}

// permissiveObjectSchema is used when a slide layout carries no JSON schema of
// its own.
func permissiveObjectSchema() map[string]any {
  return map[string]any{
    "type":                 "object",
    "additionalProperties": true,
  }
}

func (c *openAIGenerator) GenerateSlideContent(ctx context.Context, layout types.SlideLayout, outline types.SlideOutline, language, tone, verbosity, instructions string) (map[string]any, error) {
  schema := layout.JSONSchema
  if schema == nil {
    schema = permissiveObjectSchema()
  }

  system := "You generate the content of a single presentation slide as JSON matching the given layout. " +
    "Include a \"" + types.SpeakerNoteKey + "\" string entry with the speaker note."
  user := fmt.Sprintf(
    "Layout: %s (%s)\nOutline: %s\nLanguage: %s\nTone: %s\nVerbosity: %s\nInstructions: %s",
    layout.Name, layout.ID, outline.Content, language, tone, verbosity, instructions,
  )

  content, err := c.generateJSON(ctx, system, user, "slide_content", schema)
  if err != nil {
    return nil, fmt.Errorf("%w: slide content: %v", ErrGenerationFailed, err)
  }
  if len(content) == 0 {
    return nil, fmt.Errorf("%w: slide content: empty result", ErrGenerationFailed)
  }
  return content, nil
}

func (c *openAIGenerator) GenerateEditedSlideContent(ctx context.Context, prompt string, slide *types.Slide, language string, layout types.SlideLayout) (map[string]any, error) {
  schema := layout.JSONSchema
  if schema == nil {
    schema = permissiveObjectSchema()
  }

  current, err := json.Marshal(slide.Content)
  if err != nil {
    return nil, fmt.Errorf("%w: marshal current content: %v", ErrGenerationFailed, err)
  }

  system := "You edit the content of a single presentation slide according to the user's prompt, returning the full " +
    "updated slide JSON for the given layout. Keep the \"" + types.SpeakerNoteKey + "\" entry up to date."
  user := fmt.Sprintf(
    "Prompt: %s\nLanguage: %s\nTarget layout: %s (%s)\nCurrent content: %s",
    prompt, language, layout.Name, layout.ID, string(current),
  )

  content, err := c.generateJSON(ctx, system, user, "edited_slide_content", schema)
  if err != nil {
    return nil, fmt.Errorf("%w: edited slide content: %v", ErrGenerationFailed, err)
  }
  if len(content) == 0 {
    return nil, fmt.Errorf("%w: edited slide content: empty result", ErrGenerationFailed)
  }
  return content, nil
}

func (c *openAIGenerator) SelectSlideLayout(ctx context.Context, prompt string, layout types.PresentationLayout, slide *types.Slide) (types.SlideLayout, error) {
  if len(layout.Slides) == 0 {
    return types.SlideLayout{}, fmt.Errorf("%w: presentation layout has no slide templates", ErrGenerationFailed)
  }

  var names []string
  for i, sl := range layout.Slides {
    names = append(names, fmt.Sprintf("%d: %s (%s)", i, sl.Name, sl.ID))
  }

  schema := map[string]any{
    "type": "object",
    "properties": map[string]any{
      "layout_index": map[string]any{"type": "integer"},
    },
    "required":             []string{"layout_index"},
    "additionalProperties": false,
  }

  system := "Given an edit prompt and the slide being edited, pick the best fitting layout from the list. Respond with its index."
  user := fmt.Sprintf(
    "Prompt: %s\nCurrent layout: %s\nAvailable layouts:\n%s",
    prompt, slide.Layout, strings.Join(names, "\n"),
  )

  obj, err := c.generateJSON(ctx, system, user, "layout_selection", schema)
  if err != nil {
    return types.SlideLayout{}, fmt.Errorf("%w: layout selection: %v", ErrGenerationFailed, err)
  }

  idx := 0
  if raw, ok := obj["layout_index"].(float64); ok {
    idx = int(raw)
  }
  if idx < 0 || idx >= len(layout.Slides) {
    // out-of-bounds suggestion clamps to the first template
    idx = 0
  }
  return layout.Slides[idx], nil
}

func (c *openAIGenerator) GenerateStructure(ctx context.Context, outline types.PresentationOutline, layout types.PresentationLayout, instructions string, singleSlide bool) (types.PresentationStructure, error) {
  if len(layout.Slides) == 0 {
    return types.PresentationStructure{}, fmt.Errorf("%w: presentation layout has no slide templates", ErrGenerationFailed)
  }

  var names []string
  for i, sl := range layout.Slides {
    names = append(names, fmt.Sprintf("%d: %s (%s)", i, sl.Name, sl.ID))
  }
  var outlines []string
  for i, o := range outline.Slides {
    outlines = append(outlines, fmt.Sprintf("%d: %s", i, o.Content))
  }

  schema := map[string]any{
    "type": "object",
    "properties": map[string]any{
      "slides": map[string]any{
        "type":  "array",
        "items": map[string]any{"type": "integer"},
      },
    },
    "required":             []string{"slides"},
    "additionalProperties": false,
  }

  system := "Assign a layout slot index to each outline entry of a presentation. Respond with the slot index sequence."
  if singleSlide {
    system = "Assign a layout slot index to the single outline entry. Respond with a one-element slot index sequence."
  }
  user := fmt.Sprintf(
    "Instructions: %s\nAvailable layouts:\n%s\nOutline:\n%s",
    instructions, strings.Join(names, "\n"), strings.Join(outlines, "\n"),
  )

  obj, err := c.generateJSON(ctx, system, user, "presentation_structure", schema)
  if err != nil {
    return types.PresentationStructure{}, fmt.Errorf("%w: structure generation: %v", ErrGenerationFailed, err)
  }

  var structure types.PresentationStructure
  if raw, ok := obj["slides"].([]any); ok {
    for _, v := range raw {
      if f, ok := v.(float64); ok {
        structure.Slides = append(structure.Slides, int(f))
      }
    }
  }
  if len(structure.Slides) == 0 {
    return types.PresentationStructure{}, fmt.Errorf("%w: structure generation: empty result", ErrGenerationFailed)
  }
  return structure, nil
}

func (c *openAIGenerator) GenerateEditedSlideHTML(ctx context.Context, prompt, html string) (string, error) {
  system := "You edit raw presentation slide HTML according to the user's prompt. Respond with the full updated HTML only."
  user := fmt.Sprintf("Prompt: %s\nCurrent HTML:\n%s", prompt, html)

  text, err := c.generate(ctx, system, user, "", nil)
  if err != nil {
    return "", fmt.Errorf("%w: edited slide html: %v", ErrGenerationFailed, err)
  }
  if strings.TrimSpace(text) == "" {
    return "", fmt.Errorf("%w: edited slide html: empty result", ErrGenerationFailed)
  }
  return text, nil
}
