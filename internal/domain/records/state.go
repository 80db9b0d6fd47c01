package records

/*
	Attribute state store
	---------------------
	- Holds the in-memory snapshot of one record while it is being edited.
	- Every mutation goes through a typed Update; string paths never appear.
	- Copy-on-write: an Update returns a fresh Record value and clones the
	  nested group it touches, so earlier snapshots stay untouched and
	  reference identity works for change detection.
*/

// Update is one typed mutation of the record snapshot.
type Update interface {
	applyTo(r Record) Record
}

// Store owns the snapshot between load and save.
type Store struct {
	rec Record
}

func NewStore(rec Record) *Store {
	return &Store{rec: rec}
}

// Get returns the current snapshot. Nested groups inside it are never
// mutated in place by Apply, so callers may keep it around for comparison.
func (s *Store) Get() Record {
	return s.rec
}

func (s *Store) Apply(updates ...Update) Record {
	for _, u := range updates {
		if u == nil {
			continue
		}
		s.rec = u.applyTo(s.rec)
	}
	return s.rec
}

// ---------- scalar updates

type SetTitle struct{ Value string }

func (u SetTitle) applyTo(r Record) Record {
	r.Title = u.Value
	return r
}

type SetDescription struct{ Value *string }

func (u SetDescription) applyTo(r Record) Record {
	r.Description = cloneStrPtr(u.Value)
	return r
}

type SetMedium struct{ Value string }

func (u SetMedium) applyTo(r Record) Record {
	r.Medium = u.Value
	return r
}

type SetStatus struct{ Value Status }

func (u SetStatus) applyTo(r Record) Record {
	r.Status = u.Value
	return r
}

type SetCurrency struct{ Value string }

func (u SetCurrency) applyTo(r Record) Record {
	r.Currency = u.Value
	return r
}

type SetInventoryNumber struct{ Value *string }

func (u SetInventoryNumber) applyTo(r Record) Record {
	r.InventoryNumber = cloneStrPtr(u.Value)
	return r
}

type SetPrivateNote struct{ Value *string }

func (u SetPrivateNote) applyTo(r Record) Record {
	r.PrivateNote = cloneStrPtr(u.Value)
	return r
}

type SetProvenance struct{ Value *string }

func (u SetProvenance) applyTo(r Record) Record {
	r.Provenance = cloneStrPtr(u.Value)
	return r
}

type SetProvenanceNotes struct{ Value *string }

func (u SetProvenanceNotes) applyTo(r Record) Record {
	r.ProvenanceNotes = cloneStrPtr(u.Value)
	return r
}

type SetLocation struct{ Value *string }

func (u SetLocation) applyTo(r Record) Record {
	r.Location = cloneStrPtr(u.Value)
	return r
}

// SetPricing switches the pricing mode and atomically nulls out the fields
// the new mode does not use. Exactly one mode is active at a time.
type SetPricing struct {
	Mode     PricingMode
	Price    *float64
	MinPrice *float64
	MaxPrice *float64
}

func (u SetPricing) applyTo(r Record) Record {
	r.PricingMode = u.Mode
	switch u.Mode {
	case PricingFixed:
		r.Price = cloneFloatPtr(u.Price)
		r.MinPrice = nil
		r.MaxPrice = nil
	case PricingNegotiable:
		r.Price = cloneFloatPtr(u.Price)
		r.MinPrice = cloneFloatPtr(u.MinPrice)
		r.MaxPrice = cloneFloatPtr(u.MaxPrice)
	case PricingOnRequest:
		r.Price = nil
		r.MinPrice = nil
		r.MaxPrice = nil
	}
	return r
}

// ---------- nested group updates

// SetDimensions replaces the dimensions group. The unit is always the
// canonical one.
type SetDimensions struct {
	Width  *float64
	Height *float64
	Depth  *float64
}

func (u SetDimensions) applyTo(r Record) Record {
	r.Dimensions = &Dimensions{
		Width:  cloneFloatPtr(u.Width),
		Height: cloneFloatPtr(u.Height),
		Depth:  cloneFloatPtr(u.Depth),
		Unit:   DimensionUnit,
	}
	return r
}

type SetFraming struct {
	IsFramed bool
	Details  string
}

func (u SetFraming) applyTo(r Record) Record {
	f := Framing{IsFramed: u.IsFramed}
	if u.IsFramed {
		f.Details = u.Details
	}
	r.Framing = &f
	return r
}

type SetSignature struct {
	IsSigned bool
	Location string
	Details  string
}

func (u SetSignature) applyTo(r Record) Record {
	sig := Signature{IsSigned: u.IsSigned}
	if u.IsSigned {
		sig.Location = u.Location
		sig.Details = u.Details
	}
	r.Signature = &sig
	return r
}

// SetEditionFlag toggles whether the record is an edition. Turning it off
// clears sizes and the sold set in the same step; turning it on seeds the
// defaults when no sizes were set before.
type SetEditionFlag struct{ IsEdition bool }

func (u SetEditionFlag) applyTo(r Record) Record {
	if !u.IsEdition {
		r.Edition = &Edition{IsEdition: false}
		return r
	}
	e := Edition{IsEdition: true, Size: 1, APSize: 0}
	if r.Edition != nil && r.Edition.Size >= 1 {
		e.Size = r.Edition.Size
		e.APSize = r.Edition.APSize
		e.SoldEditions = cloneStrings(r.Edition.SoldEditions)
	}
	r.Edition = &e
	return r
}

// SetEditionSizes changes the two size parameters. Sold identifiers from a
// previously larger size are kept; pruning them is an explicit operator
// action (see PruneSoldEditions).
type SetEditionSizes struct {
	Size   int
	APSize int
}

func (u SetEditionSizes) applyTo(r Record) Record {
	e := Edition{IsEdition: true, Size: u.Size, APSize: u.APSize}
	if r.Edition != nil {
		e.IsEdition = r.Edition.IsEdition
		e.SoldEditions = cloneStrings(r.Edition.SoldEditions)
	}
	r.Edition = &e
	return r
}

// ToggleEditionSold is an idempotent add/remove on the sold set. It does not
// check that the identifier belongs to the currently generated sequence.
type ToggleEditionSold struct {
	Identifier string
	Sold       bool
}

func (u ToggleEditionSold) applyTo(r Record) Record {
	if r.Edition == nil {
		return r
	}
	e := *r.Edition
	e.SoldEditions = soldSetWith(r.Edition.SoldEditions, u.Identifier, u.Sold)
	r.Edition = &e
	return r
}

type SetCreationDate struct {
	Type  DateType
	Value string
	Start string
	End   string
}

func (u SetCreationDate) applyTo(r Record) Record {
	cd := CreationDate{Type: u.Type}
	switch u.Type {
	case DateRange:
		cd.Start = u.Start
		cd.End = u.End
	default:
		cd.Value = u.Value
	}
	r.CreationDate = &cd
	return r
}

// ---------- list updates

type SetExhibitions struct{ Entries []HistoricalEntry }

func (u SetExhibitions) applyTo(r Record) Record {
	r.Exhibitions = cloneEntries(u.Entries)
	return r
}

type SetLiterature struct{ Entries []HistoricalEntry }

func (u SetLiterature) applyTo(r Record) Record {
	r.Literature = cloneEntries(u.Entries)
	return r
}

type SetKeywords struct{ Values []string }

func (u SetKeywords) applyTo(r Record) Record {
	r.Keywords = cloneStrings(u.Values)
	return r
}

// ---------- clone helpers

func cloneStrPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneEntries(in []HistoricalEntry) []HistoricalEntry {
	if in == nil {
		return nil
	}
	out := make([]HistoricalEntry, len(in))
	copy(out, in)
	return out
}
