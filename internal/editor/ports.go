package editor

import (
	"context"
	"io"

	"atelier-app/internal/domain/gallery"
	"atelier-app/internal/domain/records"
)

// Persistence is the system of record after a successful save. All transport
// and schema belong to the implementation; the engine only sequences calls.
type Persistence interface {
	ReadRecord(ctx context.Context, id string) (records.Record, error)
	InsertRecord(ctx context.Context, rec records.Record) (records.Record, error)
	UpdateRecord(ctx context.Context, rec records.Record) (records.Record, error)

	// GenerateUniqueSlug returns an owner-unique slug derived from the title.
	GenerateUniqueSlug(ctx context.Context, userID uint, title string) (string, error)

	// ReplaceMembership rewrites the full membership set for one record in a
	// single transaction: delete all, insert target. Never a diff.
	ReplaceMembership(ctx context.Context, recordID string, collectionIDs []string) error

	// ReplaceTags rewrites the record's selected tag links the same way.
	ReplaceTags(ctx context.Context, recordID string, tagIDs []string) error

	ListImages(ctx context.Context, recordID string) ([]gallery.Image, error)
	InsertImage(ctx context.Context, img gallery.Image) (gallery.Image, error)
	DeleteImage(ctx context.Context, imageID string) error
	UpdateImageURL(ctx context.Context, imageID, url string) error

	// SetImageOrder renumbers every image of the record from the given
	// ordering in one transaction, primary flag included. Idempotent.
	SetImageOrder(ctx context.Context, recordID string, orderedIDs []string) error

	// UpdateEditionSale flips one identifier in the record's sold set.
	// clearStale additionally prunes identifiers outside the current
	// sequence; that pruning never happens implicitly.
	UpdateEditionSale(ctx context.Context, recordID, identifier string, sold, clearStale bool) error
}

// RegenerationOptions mirror the parameters of the external image job.
type RegenerationOptions struct {
	ForceWatermark     bool `json:"force_watermark"`
	ForceVisualization bool `json:"force_visualization"`
}

// JobTrigger hands off the derived-metadata regeneration request.
// Fire-and-forget: the engine never awaits a response, and an enqueue
// failure is surfaced as a warning only.
type JobTrigger interface {
	RequestImageMetadataRegeneration(recordID string, opts RegenerationOptions) error
}

// ObjectStorage receives uploaded image bytes before the resulting URL is
// handed to the gallery manager.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}
