package editor

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"atelier-app/internal/domain/gallery"
	"atelier-app/internal/domain/records"
	"atelier-app/internal/domain/tags"
)

// fakeStore records every call so tests can assert on the sequencing and the
// exact payloads, and lets individual steps be forced to fail.
type fakeStore struct {
	mu    sync.Mutex
	calls []string

	records map[string]records.Record

	slugErr   error
	insertErr error
	updateErr error
	tagsErr   error
	imageErr  error

	lastMembership []string
	lastTagIDs     []string
	insertedImages []gallery.Image

	insertGate chan struct{} // when set, InsertRecord blocks until closed
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]records.Record{}}
}

func (s *fakeStore) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *fakeStore) ReadRecord(_ context.Context, id string) (records.Record, error) {
	s.record("ReadRecord")
	rec, ok := s.records[id]
	if !ok {
		return records.Record{}, fmt.Errorf("record %s not found", id)
	}
	return rec, nil
}

func (s *fakeStore) InsertRecord(_ context.Context, rec records.Record) (records.Record, error) {
	s.record("InsertRecord")
	if s.insertGate != nil {
		<-s.insertGate
	}
	if s.insertErr != nil {
		return records.Record{}, s.insertErr
	}
	rec.ID = fmt.Sprintf("rec-%d", len(s.records)+1)
	s.mu.Lock()
	s.records[rec.ID] = rec
	s.mu.Unlock()
	return rec, nil
}

func (s *fakeStore) UpdateRecord(_ context.Context, rec records.Record) (records.Record, error) {
	s.record("UpdateRecord")
	if s.updateErr != nil {
		return records.Record{}, s.updateErr
	}
	s.mu.Lock()
	s.records[rec.ID] = rec
	s.mu.Unlock()
	return rec, nil
}

func (s *fakeStore) GenerateUniqueSlug(_ context.Context, _ uint, title string) (string, error) {
	s.record("GenerateUniqueSlug")
	if s.slugErr != nil {
		return "", s.slugErr
	}
	return records.MakeSlug(title), nil
}

func (s *fakeStore) ReplaceMembership(_ context.Context, _ string, collectionIDs []string) error {
	s.record("ReplaceMembership")
	s.lastMembership = collectionIDs
	return nil
}

func (s *fakeStore) ReplaceTags(_ context.Context, _ string, tagIDs []string) error {
	s.record("ReplaceTags")
	if s.tagsErr != nil {
		return s.tagsErr
	}
	s.lastTagIDs = tagIDs
	return nil
}

func (s *fakeStore) ListImages(context.Context, string) ([]gallery.Image, error) {
	s.record("ListImages")
	return nil, nil
}

func (s *fakeStore) InsertImage(_ context.Context, img gallery.Image) (gallery.Image, error) {
	s.record("InsertImage")
	if s.imageErr != nil {
		return gallery.Image{}, s.imageErr
	}
	s.mu.Lock()
	s.insertedImages = append(s.insertedImages, img)
	s.mu.Unlock()
	return img, nil
}

func (s *fakeStore) DeleteImage(context.Context, string) error {
	s.record("DeleteImage")
	return nil
}

func (s *fakeStore) UpdateImageURL(context.Context, string, string) error {
	s.record("UpdateImageURL")
	return nil
}

func (s *fakeStore) SetImageOrder(context.Context, string, []string) error {
	s.record("SetImageOrder")
	return nil
}

func (s *fakeStore) UpdateEditionSale(_ context.Context, _, _ string, _, _ bool) error {
	s.record("UpdateEditionSale")
	return nil
}

func (s *fakeStore) callNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

type fakeJobs struct {
	mu        sync.Mutex
	requested []string
	err       error
	onRequest func()
}

func (j *fakeJobs) RequestImageMetadataRegeneration(recordID string, _ RegenerationOptions) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	if j.onRequest != nil {
		j.onRequest()
	}
	j.requested = append(j.requested, recordID)
	return nil
}

func f64(v float64) *float64 { return &v }

func validInput() SaveInput {
	rec := records.New(7)
	state := records.NewStore(rec)
	state.Apply(
		records.SetTitle{Value: "Harbour Light"},
		records.SetMedium{Value: "Oil on canvas"},
		records.SetPricing{Mode: records.PricingFixed, Price: f64(1200)},
		records.SetDimensions{Width: f64(60), Height: f64(80)},
		records.SetCreationDate{Type: records.DateYearOnly, Value: "2023"},
		records.SetStatus{Value: records.StatusAvailable},
	)
	return SaveInput{
		UserID: 7,
		Record: state.Get(),
		IsNew:  true,
		Images: []gallery.Image{{ID: "img-1", URL: "https://cdn.test/1.jpg", IsPrimary: true}},
	}
}

func TestSaveNewRecord(t *testing.T) {
	store := newFakeStore()
	jobs := &fakeJobs{}
	o := NewOrchestrator(store, jobs)

	in := validInput()
	in.SystemCollectionID = "sys-1"
	in.SelectedCollectionIDs = []string{"col-a"}
	in.SelectedTags = []tags.Tag{{ID: "tag-1", Name: "landscape"}, {ID: "tag-2", Name: "oil"}}

	res, err := o.Save(context.Background(), in)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if res.RecordID == "" {
		t.Fatal("insert did not hand back the minted id")
	}
	if res.Slug != "harbour-light" {
		t.Fatalf("slug = %q", res.Slug)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}

	saved := store.records[res.RecordID]
	if saved.UserID == nil || *saved.UserID != 7 {
		t.Fatalf("owner not stamped on insert: %v", saved.UserID)
	}
	if !reflect.DeepEqual(saved.Keywords, []string{"landscape", "oil"}) {
		t.Fatalf("keywords not flattened from tag selection: %v", saved.Keywords)
	}
	if !reflect.DeepEqual(store.lastTagIDs, []string{"tag-1", "tag-2"}) {
		t.Fatalf("tag links = %v", store.lastTagIDs)
	}
	if !reflect.DeepEqual(store.lastMembership, []string{"col-a", "sys-1"}) {
		t.Fatalf("available record must join the system collection: %v", store.lastMembership)
	}
	if !reflect.DeepEqual(jobs.requested, []string{res.RecordID}) {
		t.Fatalf("regeneration not requested: %v", jobs.requested)
	}

	want := []string{"GenerateUniqueSlug", "InsertRecord", "ReplaceTags", "ReplaceMembership", "InsertImage"}
	if got := store.callNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("call order = %v, want %v", got, want)
	}
}

func TestSavedSnapshotStaysValidOnReload(t *testing.T) {
	store := newFakeStore()
	o := NewOrchestrator(store, &fakeJobs{})

	in := validInput()
	in.Record.CreationDate = nil // group never touched in the editor

	res, err := o.Save(context.Background(), in)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	saved := store.records[res.RecordID]
	if saved.CreationDate != nil {
		t.Fatalf("untouched creation date must persist as null, got %+v", saved.CreationDate)
	}
	// the persisted snapshot must pass the same rules on the next edit
	if reloaded := records.Evaluate(saved, 1); !reloaded.Valid {
		t.Fatalf("persisted record fails validation on reload: %v", reloaded.FieldErrors)
	}
}

func TestSaveAttachesSeededImagesBeforeTrigger(t *testing.T) {
	store := newFakeStore()
	jobs := &fakeJobs{}
	jobs.onRequest = func() { store.record("RegenerationRequested") }
	o := NewOrchestrator(store, jobs)

	in := validInput()
	in.Images = []gallery.Image{
		{URL: "https://cdn.test/1.jpg", Position: 0, IsPrimary: true},
		{URL: "https://cdn.test/2.jpg", Position: 1},
	}

	res, err := o.Save(context.Background(), in)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	want := []string{"GenerateUniqueSlug", "InsertRecord", "ReplaceTags", "ReplaceMembership",
		"InsertImage", "InsertImage", "RegenerationRequested"}
	if got := store.callNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("call order = %v, want %v", got, want)
	}
	for _, img := range store.insertedImages {
		if img.RecordID != res.RecordID {
			t.Fatalf("seeded image attached to %q, want %q", img.RecordID, res.RecordID)
		}
	}
}

func TestSaveSeededImageFailureIsAWarning(t *testing.T) {
	store := newFakeStore()
	store.imageErr = errors.New("disk full")
	jobs := &fakeJobs{}
	o := NewOrchestrator(store, jobs)

	res, err := o.Save(context.Background(), validInput())
	if err != nil {
		t.Fatalf("attach failure must not fail the save: %v", err)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "disk full") {
		t.Fatalf("warnings = %v", res.Warnings)
	}
	// nothing attached, so nothing to regenerate
	if len(jobs.requested) != 0 {
		t.Fatalf("regeneration requested for a record with no attached images: %v", jobs.requested)
	}
}

func TestSaveSoldRecordLeavesSystemCollection(t *testing.T) {
	store := newFakeStore()
	o := NewOrchestrator(store, &fakeJobs{})

	in := validInput()
	in.IsNew = false
	in.Record.ID = "rec-9"
	in.Record.Slug = "harbour-light"
	state := records.NewStore(in.Record)
	state.Apply(records.SetStatus{Value: records.StatusSold})
	in.Record = state.Get()
	in.SystemCollectionID = "sys-1"
	in.SelectedCollectionIDs = []string{"col-a", "sys-1"}

	if _, err := o.Save(context.Background(), in); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !reflect.DeepEqual(store.lastMembership, []string{"col-a"}) {
		t.Fatalf("sold record must leave the system collection: %v", store.lastMembership)
	}
}

func TestSaveValidationFailureTouchesNothing(t *testing.T) {
	store := newFakeStore()
	o := NewOrchestrator(store, &fakeJobs{})

	in := validInput()
	in.Record.Title = "" // trips the title rule

	res, err := o.Save(context.Background(), in)
	se, ok := AsSaveError(err)
	if !ok || se.Kind != ValidationFailed {
		t.Fatalf("err = %v, want validation failure", err)
	}
	if se.FieldErrors["title"] == "" {
		t.Fatalf("field errors = %v", se.FieldErrors)
	}
	if !reflect.DeepEqual(res.Touched, records.RuleFields()) {
		t.Fatalf("all rule fields must be marked touched, got %v", res.Touched)
	}
	if calls := store.callNames(); len(calls) != 0 {
		t.Fatalf("store was reached before validation passed: %v", calls)
	}
}

func TestSaveSlugFailure(t *testing.T) {
	store := newFakeStore()
	store.slugErr = errors.New("slug query timed out")
	o := NewOrchestrator(store, &fakeJobs{})

	_, err := o.Save(context.Background(), validInput())
	se, ok := AsSaveError(err)
	if !ok || se.Kind != SlugGenerationFailed {
		t.Fatalf("err = %v, want slug generation failure", err)
	}
	if !strings.Contains(err.Error(), "slug query timed out") {
		t.Fatalf("cause lost: %v", err)
	}
}

func TestSaveInsertFailure(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("connection reset")
	o := NewOrchestrator(store, &fakeJobs{})

	_, err := o.Save(context.Background(), validInput())
	se, ok := AsSaveError(err)
	if !ok || se.Kind != PersistenceWriteFailed {
		t.Fatalf("err = %v, want persistence write failure", err)
	}
}

func TestSaveKeepsExistingSlug(t *testing.T) {
	store := newFakeStore()
	o := NewOrchestrator(store, &fakeJobs{})

	in := validInput()
	in.IsNew = false
	in.Record.ID = "rec-1"
	in.Record.Slug = "harbour-light"
	in.TitleChanged = false

	res, err := o.Save(context.Background(), in)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if res.Slug != "harbour-light" {
		t.Fatalf("slug = %q, want existing slug kept", res.Slug)
	}
	for _, call := range store.callNames() {
		if call == "GenerateUniqueSlug" {
			t.Fatal("slug regenerated without a title change")
		}
	}
}

func TestSaveRegeneratesSlugOnTitleChange(t *testing.T) {
	store := newFakeStore()
	o := NewOrchestrator(store, &fakeJobs{})

	in := validInput()
	in.IsNew = false
	in.Record.ID = "rec-1"
	in.Record.Slug = "old-title"
	in.TitleChanged = true

	res, err := o.Save(context.Background(), in)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if res.Slug != "harbour-light" {
		t.Fatalf("slug = %q, want one derived from the new title", res.Slug)
	}
}

func TestSaveNormalizesOptionalText(t *testing.T) {
	store := newFakeStore()
	o := NewOrchestrator(store, &fakeJobs{})

	blank := "   "
	in := validInput()
	in.Record.Description = &blank
	in.Record.Location = &blank
	in.Record.Dimensions = nil
	in.Record.CreationDate = nil

	// images rule still needs to pass; dimensions and creation date rules
	// allow nil only through their defaults, so re-apply the required groups
	state := records.NewStore(in.Record)
	state.Apply(
		records.SetDimensions{Width: f64(10), Height: f64(10)},
	)
	in.Record = state.Get()

	res, err := o.Save(context.Background(), in)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	saved := store.records[res.RecordID]
	if saved.Description != nil || saved.Location != nil {
		t.Fatalf("blank optional text must persist as null: %v %v", saved.Description, saved.Location)
	}
	if saved.Framing == nil || saved.Signature == nil || saved.Edition == nil {
		t.Fatal("untouched groups must persist with defaults, not null")
	}
	if saved.CreationDate != nil {
		t.Fatalf("untouched creation date must stay null: %+v", saved.CreationDate)
	}
	if saved.Keywords == nil {
		t.Fatal("empty tag selection must persist as an empty list, not null")
	}
}

func TestSaveTriggerFailureIsAWarning(t *testing.T) {
	store := newFakeStore()
	jobs := &fakeJobs{err: errors.New("queue full")}
	o := NewOrchestrator(store, jobs)

	res, err := o.Save(context.Background(), validInput())
	if err != nil {
		t.Fatalf("trigger failure must not fail the save: %v", err)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "queue full") {
		t.Fatalf("warnings = %v", res.Warnings)
	}
	if res.RecordID == "" {
		t.Fatal("save result incomplete despite successful commit")
	}
}

func TestSaveRejectsConcurrentSaveOfSameRecord(t *testing.T) {
	store := newFakeStore()
	store.insertGate = make(chan struct{})
	o := NewOrchestrator(store, &fakeJobs{})

	firstDone := make(chan error, 1)
	go func() {
		_, err := o.Save(context.Background(), validInput())
		firstDone <- err
	}()

	// wait until the first save is parked inside the store write
	for len(store.callNames()) < 2 {
		time.Sleep(time.Millisecond)
	}

	_, err := o.Save(context.Background(), validInput())
	if !errors.Is(err, ErrSaveInFlight) {
		t.Fatalf("second save err = %v, want ErrSaveInFlight", err)
	}

	close(store.insertGate)
	if err := <-firstDone; err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	// the latch is released after completion, a third save goes through
	if _, err := o.Save(context.Background(), validInput()); err != nil {
		t.Fatalf("save after release failed: %v", err)
	}
}

func TestToggleEditionSaleDelegates(t *testing.T) {
	store := newFakeStore()
	o := NewOrchestrator(store, &fakeJobs{})

	if err := o.ToggleEditionSale(context.Background(), "rec-1", "2/5", true, false); err != nil {
		t.Fatal(err)
	}
	want := []string{"UpdateEditionSale"}
	if got := store.callNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v", got)
	}
}
