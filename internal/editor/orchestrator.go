package editor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"atelier-app/internal/domain/collections"
	"atelier-app/internal/domain/gallery"
	"atelier-app/internal/domain/records"
	"atelier-app/internal/domain/tags"
)

// SaveInput is everything the orchestrator reads at save time: the current
// snapshot plus the image, tag and collection state the UI accumulated.
type SaveInput struct {
	UserID uint
	Record records.Record

	// IsNew and TitleChanged drive slug derivation.
	IsNew        bool
	TitleChanged bool

	Images []gallery.Image

	SelectedTags          []tags.Tag
	SelectedCollectionIDs []string
	SystemCollectionID    string

	Regeneration RegenerationOptions
}

type SaveResult struct {
	RecordID string
	Slug     string

	// Touched lists every rule-relevant field on validation failure so the
	// caller can surface all inline errors at once.
	Touched []string

	// Warnings carry non-fatal problems (async trigger failures). The save
	// is still successful when warnings are present.
	Warnings []string
}

// Orchestrator sequences a save: validation gate, slug derivation, payload
// normalization, upsert, membership reconciliation, async job trigger.
type Orchestrator struct {
	store Persistence
	jobs  JobTrigger

	mu       sync.Mutex
	inflight map[string]bool
}

func NewOrchestrator(store Persistence, jobs JobTrigger) *Orchestrator {
	return &Orchestrator{
		store:    store,
		jobs:     jobs,
		inflight: make(map[string]bool),
	}
}

// Save is the single entry point the UI layer calls. A second save for the
// same record while one is committing is rejected with ErrSaveInFlight.
func (o *Orchestrator) Save(ctx context.Context, in SaveInput) (SaveResult, error) {
	key := in.Record.ID
	if key == "" {
		key = fmt.Sprintf("new:%d", in.UserID)
	}
	if !o.acquire(key) {
		return SaveResult{}, ErrSaveInFlight
	}
	defer o.release(key)

	// 1. Validation gate. Local only, nothing has reached the store yet.
	if res := records.Evaluate(in.Record, len(in.Images)); !res.Valid {
		return SaveResult{Touched: records.RuleFields()},
			&SaveError{Kind: ValidationFailed, FieldErrors: res.FieldErrors}
	}

	rec := in.Record

	// 2. Slug derivation: fresh for new records, missing slugs, or a title
	// change since load; otherwise the existing slug is kept.
	if in.IsNew || rec.Slug == "" || in.TitleChanged {
		slug, err := o.store.GenerateUniqueSlug(ctx, in.UserID, rec.Title)
		if err != nil {
			return SaveResult{}, &SaveError{Kind: SlugGenerationFailed, Err: err}
		}
		rec.Slug = slug
	}

	// 3. Normalize the payload.
	rec = normalize(rec, in.SelectedTags)

	// 4. Upsert. An insert must hand the minted id back so image uploads
	// issued afterwards target the right record.
	var saved records.Record
	var err error
	if in.IsNew {
		uid := in.UserID
		rec.UserID = &uid
		saved, err = o.store.InsertRecord(ctx, rec)
	} else {
		saved, err = o.store.UpdateRecord(ctx, rec)
	}
	if err != nil {
		return SaveResult{}, &SaveError{Kind: PersistenceWriteFailed, Err: err}
	}

	if err := o.store.ReplaceTags(ctx, saved.ID, tagIDs(in.SelectedTags)); err != nil {
		return SaveResult{}, &SaveError{Kind: PersistenceWriteFailed, Err: err}
	}

	// 5. Membership reconciliation with the status-derived target set.
	target := collections.ComputeTarget(in.SelectedCollectionIDs, in.SystemCollectionID, saved.Status)
	if err := o.store.ReplaceMembership(ctx, saved.ID, target); err != nil {
		return SaveResult{}, &SaveError{Kind: PersistenceWriteFailed, Err: err}
	}

	out := SaveResult{RecordID: saved.ID, Slug: saved.Slug}

	// A new record's seeded images attach here, against the minted id and
	// before the regeneration job can observe the record. Attach failures
	// are warnings; the save itself has committed.
	attached := len(in.Images)
	if in.IsNew {
		attached = 0
		for _, img := range in.Images {
			img.RecordID = saved.ID
			if _, err := o.store.InsertImage(ctx, img); err != nil {
				out.Warnings = append(out.Warnings,
					fmt.Sprintf("image was not attached: %v", err))
				continue
			}
			attached++
		}
	}

	// 6. Async trigger, fire-and-forget. A failure never unwinds the save.
	if attached > 0 && o.jobs != nil {
		if err := o.jobs.RequestImageMetadataRegeneration(saved.ID, in.Regeneration); err != nil {
			out.Warnings = append(out.Warnings,
				fmt.Sprintf("image metadata regeneration was not triggered: %v", err))
		}
	}

	return out, nil
}

// ToggleEditionSale persists one sold flip. The write is transactional on
// the store side; a failure is returned so the caller can revert its
// optimistic local flip instead of drifting from the store.
func (o *Orchestrator) ToggleEditionSale(ctx context.Context, recordID, identifier string, sold, clearStale bool) error {
	return o.store.UpdateEditionSale(ctx, recordID, identifier, sold, clearStale)
}

// NotifyPrimaryChanged forwards a gallery primary-changed event to the job
// trigger. Returns the enqueue error for the caller to surface as a warning.
func (o *Orchestrator) NotifyPrimaryChanged(recordID string, opts RegenerationOptions) error {
	if o.jobs == nil {
		return nil
	}
	return o.jobs.RequestImageMetadataRegeneration(recordID, opts)
}

func (o *Orchestrator) acquire(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight[key] {
		return false
	}
	o.inflight[key] = true
	return true
}

func (o *Orchestrator) release(key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, key)
}

// normalize guarantees default sub-objects even when the user never touched
// a group, flattens the tag selection into the keyword list and coerces
// optional text to null rather than empty string.
func normalize(rec records.Record, selected []tags.Tag) records.Record {
	if rec.Dimensions == nil {
		rec.Dimensions = &records.Dimensions{Unit: records.DimensionUnit}
	}
	if rec.Framing == nil {
		rec.Framing = &records.Framing{}
	}
	if rec.Signature == nil {
		rec.Signature = &records.Signature{}
	}
	if rec.Edition == nil {
		rec.Edition = &records.Edition{}
	}
	// CreationDate stays null when never touched: an empty dated group would
	// fail the date rule on the next save of an otherwise valid record.

	rec.Keywords = tags.Keywords(selected)

	rec.Description = blankToNil(rec.Description)
	rec.InventoryNumber = blankToNil(rec.InventoryNumber)
	rec.PrivateNote = blankToNil(rec.PrivateNote)
	rec.Provenance = blankToNil(rec.Provenance)
	rec.ProvenanceNotes = blankToNil(rec.ProvenanceNotes)
	rec.Location = blankToNil(rec.Location)

	return rec
}

func blankToNil(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	return p
}

func tagIDs(selected []tags.Tag) []string {
	ids := make([]string, 0, len(selected))
	for _, t := range selected {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}
	return ids
}
