package repos

import (
  "context"
  "errors"
  "testing"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/dbrainio/presenton/internal/repos/testutil"
  "github.com/dbrainio/presenton/internal/types"
)

func seedCollection(t *testing.T, ctx context.Context, db *gorm.DB, n int) (uuid.UUID, []*types.Slide) {
  t.Helper()
  p := testutil.SeedPresentation(t, ctx, db, types.PresentationLayout{Name: "default"})
  slides := make([]*types.Slide, 0, n)
  for i := 0; i < n; i++ {
    slides = append(slides, testutil.SeedSlide(t, ctx, db, p.ID, i))
  }
  return p.ID, slides
}

func TestSlideRepoGetByPresentationAndIndex(t *testing.T) {
  ctx := context.Background()
  db := testutil.DB(t)
  repo := NewSlideRepo(db, testutil.Logger(t))

  presID, slides := seedCollection(t, ctx, db, 3)

  got, err := repo.GetByPresentationAndIndex(ctx, nil, presID, 1)
  if err != nil {
    t.Fatalf("GetByPresentationAndIndex: %v", err)
  }
  if got == nil || got.ID != slides[1].ID {
    t.Fatalf("wrong slide at index 1: got=%v want=%s", got, slides[1].ID)
  }

  missing, err := repo.GetByPresentationAndIndex(ctx, nil, presID, 7)
  if err != nil {
    t.Fatalf("GetByPresentationAndIndex miss: %v", err)
  }
  if missing != nil {
    t.Fatalf("expected nil for missing index, got %v", missing)
  }
}

func TestSlideRepoListByPresentationOrdersAscending(t *testing.T) {
  ctx := context.Background()
  db := testutil.DB(t)
  repo := NewSlideRepo(db, testutil.Logger(t))

  p := testutil.SeedPresentation(t, ctx, db, types.PresentationLayout{Name: "default"})
  // seed out of order on purpose
  s2 := testutil.SeedSlide(t, ctx, db, p.ID, 2)
  s0 := testutil.SeedSlide(t, ctx, db, p.ID, 0)
  s1 := testutil.SeedSlide(t, ctx, db, p.ID, 1)

  listed, err := repo.ListByPresentation(ctx, nil, p.ID)
  if err != nil {
    t.Fatalf("ListByPresentation: %v", err)
  }
  wantIDs := []uuid.UUID{s0.ID, s1.ID, s2.ID}
  if len(listed) != len(wantIDs) {
    t.Fatalf("listing length: want=%d got=%d", len(wantIDs), len(listed))
  }
  for i, s := range listed {
    if s.ID != wantIDs[i] {
      t.Fatalf("listing[%d]: want=%s got=%s", i, wantIDs[i], s.ID)
    }
    if s.Index != i {
      t.Fatalf("listing[%d] index: want=%d got=%d", i, i, s.Index)
    }
  }
}

func TestSlideRepoDirectionalRangeQueries(t *testing.T) {
  ctx := context.Background()
  db := testutil.DB(t)
  repo := NewSlideRepo(db, testutil.Logger(t))

  presID, _ := seedCollection(t, ctx, db, 4)

  desc, err := repo.ListFromIndexDesc(ctx, nil, presID, 1)
  if err != nil {
    t.Fatalf("ListFromIndexDesc: %v", err)
  }
  gotDesc := indexSequence(desc)
  wantDesc := []int{3, 2, 1}
  if !equalInts(gotDesc, wantDesc) {
    t.Fatalf("ListFromIndexDesc order: want=%v got=%v", wantDesc, gotDesc)
  }

  asc, err := repo.ListAfterIndexAsc(ctx, nil, presID, 1)
  if err != nil {
    t.Fatalf("ListAfterIndexAsc: %v", err)
  }
  gotAsc := indexSequence(asc)
  wantAsc := []int{2, 3}
  if !equalInts(gotAsc, wantAsc) {
    t.Fatalf("ListAfterIndexAsc order: want=%v got=%v", wantAsc, gotAsc)
  }
}

func TestSlideRepoReassign(t *testing.T) {
  ctx := context.Background()
  db := testutil.DB(t)
  repo := NewSlideRepo(db, testutil.Logger(t))

  presID, slides := seedCollection(t, ctx, db, 1)
  slide := slides[0]

  oldID := slide.ID
  slide.ID = uuid.New()
  slide.Layout = "quote"
  slide.SpeakerNote = "updated"
  if err := repo.Reassign(ctx, nil, oldID, slide); err != nil {
    t.Fatalf("Reassign: %v", err)
  }

  gone, err := repo.GetByID(ctx, nil, oldID)
  if err != nil {
    t.Fatalf("GetByID old: %v", err)
  }
  if gone != nil {
    t.Fatalf("old identity still resolves: %v", gone.ID)
  }

  got, err := repo.GetByID(ctx, nil, slide.ID)
  if err != nil {
    t.Fatalf("GetByID new: %v", err)
  }
  if got == nil {
    t.Fatal("new identity does not resolve")
  }
  if got.Layout != "quote" || got.SpeakerNote != "updated" {
    t.Fatalf("fields not rewritten: layout=%q note=%q", got.Layout, got.SpeakerNote)
  }
  if got.Index != 0 || got.PresentationID != presID {
    t.Fatalf("index/presentation must not move: index=%d pres=%s", got.Index, got.PresentationID)
  }
}

func TestSlideRepoReassignMissingRow(t *testing.T) {
  ctx := context.Background()
  db := testutil.DB(t)
  repo := NewSlideRepo(db, testutil.Logger(t))

  _, slides := seedCollection(t, ctx, db, 1)
  slide := slides[0]
  slide.ID = uuid.New()

  err := repo.Reassign(ctx, nil, uuid.New(), slide)
  if !errors.Is(err, gorm.ErrRecordNotFound) {
    t.Fatalf("expected ErrRecordNotFound, got %v", err)
  }
}

func TestSlideRepoSaveAllPreservesGivenOrder(t *testing.T) {
  ctx := context.Background()
  db := testutil.DB(t)
  repo := NewSlideRepo(db, testutil.Logger(t))

  presID, _ := seedCollection(t, ctx, db, 3)

  // shift +1 in descending order, the insert-shift contract
  shifted, err := repo.ListFromIndexDesc(ctx, nil, presID, 0)
  if err != nil {
    t.Fatalf("ListFromIndexDesc: %v", err)
  }
  for _, s := range shifted {
    s.Index++
  }
  if err := repo.SaveAll(ctx, nil, shifted); err != nil {
    t.Fatalf("SaveAll: %v", err)
  }

  listed, err := repo.ListByPresentation(ctx, nil, presID)
  if err != nil {
    t.Fatalf("ListByPresentation: %v", err)
  }
  got := indexSequence(listed)
  want := []int{1, 2, 3}
  if !equalInts(got, want) {
    t.Fatalf("indices after shift: want=%v got=%v", want, got)
  }
}

func indexSequence(slides []*types.Slide) []int {
  out := make([]int, 0, len(slides))
  for _, s := range slides {
    out = append(out, s.Index)
  }
  return out
}

func equalInts(a, b []int) bool {
  if len(a) != len(b) {
    return false
  }
  for i := range a {
    if a[i] != b[i] {
      return false
    }
  }
  return true
}
