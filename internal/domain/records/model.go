package records

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"atelier-app/internal/domain/gallery"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAvailable Status = "available"
	StatusOnHold    Status = "on_hold"
	StatusSold      Status = "sold"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAvailable, StatusOnHold, StatusSold:
		return true
	}
	return false
}

type PricingMode string

const (
	PricingFixed      PricingMode = "fixed"
	PricingNegotiable PricingMode = "negotiable"
	PricingOnRequest  PricingMode = "on_request"
)

func (m PricingMode) Valid() bool {
	switch m {
	case PricingFixed, PricingNegotiable, PricingOnRequest:
		return true
	}
	return false
}

// DimensionUnit is the single canonical unit for all records; there is no
// per-record unit choice.
const DimensionUnit = "cm"

type Dimensions struct {
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
	Depth  *float64 `json:"depth,omitempty"`
	Unit   string   `json:"unit"`
}

type Framing struct {
	IsFramed bool   `json:"is_framed"`
	Details  string `json:"details,omitempty"`
}

type Signature struct {
	IsSigned bool   `json:"is_signed"`
	Location string `json:"location,omitempty"`
	Details  string `json:"details,omitempty"`
}

type Edition struct {
	IsEdition    bool     `json:"is_edition"`
	Size         int      `json:"numeric_size"`
	APSize       int      `json:"ap_size"`
	SoldEditions []string `json:"sold_editions,omitempty"`
}

type DateType string

const (
	DateFullDate DateType = "full_date"
	DateYearOnly DateType = "year_only"
	DateRange    DateType = "date_range"
	DateCirca    DateType = "circa"
)

type CreationDate struct {
	Type  DateType `json:"type"`
	Value string   `json:"value,omitempty"`
	Start string   `json:"start,omitempty"`
	End   string   `json:"end,omitempty"`
}

// HistoricalEntry is one row of an exhibitions or literature list.
type HistoricalEntry struct {
	ID          string `json:"id"`
	Year        string `json:"year"`
	Description string `json:"description"`
}

type Record struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID *uint  `gorm:"index" json:"-"`

	Slug  string `gorm:"index:idx_records_user_slug" json:"slug,omitempty"`
	Title string `json:"title"`

	Description *string `json:"description,omitempty"`
	Medium      string  `json:"medium"`

	Status Status `gorm:"type:text;not null;default:'pending';index" json:"status"`

	PricingMode PricingMode `gorm:"type:text;not null;default:'fixed'" json:"pricing_mode"`
	Price       *float64    `json:"price,omitempty"`
	MinPrice    *float64    `json:"min_price,omitempty"`
	MaxPrice    *float64    `json:"max_price,omitempty"`
	Currency    string      `gorm:"not null;default:'EUR'" json:"currency"`

	InventoryNumber *string `json:"inventory_number,omitempty"`
	PrivateNote     *string `json:"private_note,omitempty"`
	Provenance      *string `json:"provenance,omitempty"`
	ProvenanceNotes *string `json:"provenance_notes,omitempty"`
	Location        *string `json:"location,omitempty"`

	Dimensions   *Dimensions   `gorm:"serializer:json" json:"dimensions,omitempty"`
	Framing      *Framing      `gorm:"serializer:json" json:"framing,omitempty"`
	Signature    *Signature    `gorm:"serializer:json" json:"signature,omitempty"`
	Edition      *Edition      `gorm:"serializer:json" json:"edition,omitempty"`
	CreationDate *CreationDate `gorm:"serializer:json" json:"creation_date,omitempty"`

	Exhibitions []HistoricalEntry `gorm:"serializer:json" json:"exhibitions,omitempty"`
	Literature  []HistoricalEntry `gorm:"serializer:json" json:"literature,omitempty"`

	// Keywords are derived from the selected tag set at save time.
	Keywords []string `gorm:"serializer:json" json:"keywords,omitempty"`

	Images []gallery.Image `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE;" json:"images,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate mints the id in the application so the model is portable
// across database backends.
func (r *Record) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// New returns the default snapshot a freshly opened editor starts from.
func New(userID uint) Record {
	uid := userID
	return Record{
		UserID:      &uid,
		Status:      StatusPending,
		PricingMode: PricingFixed,
		Currency:    "EUR",
	}
}
