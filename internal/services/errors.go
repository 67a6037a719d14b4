package services

import "errors"

var (
  // ErrNotFound means a presentation or slide identity does not resolve.
  ErrNotFound = errors.New("not found")
  // ErrIndexOutOfRange means the requested slide index is outside the valid range.
  ErrIndexOutOfRange = errors.New("slide index out of range")
  // ErrGenerationFailed means a content, layout or asset collaborator failed
  // or returned an empty result. The enclosing operation commits nothing.
  ErrGenerationFailed = errors.New("generation failed")
  // ErrConsistencyViolation means an internal invariant check failed, for
  // example the count and a point lookup disagree. Defect signal, not an
  // expected condition.
  ErrConsistencyViolation = errors.New("slide collection consistency violation")
  // ErrNoHTMLContent means an HTML edit was requested for a slide with no
  // HTML surface to edit.
  ErrNoHTMLContent = errors.New("no html to edit")
)
