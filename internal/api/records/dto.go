package records

import (
	recdomain "atelier-app/internal/domain/records"
)

// ---------- requests

type PricingInput struct {
	Mode     string   `json:"mode" binding:"required"`
	Price    *float64 `json:"price"`
	MinPrice *float64 `json:"min_price"`
	MaxPrice *float64 `json:"max_price"`
}

type DimensionsInput struct {
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
	Depth  *float64 `json:"depth"`
}

type FramingInput struct {
	IsFramed bool   `json:"is_framed"`
	Details  string `json:"details"`
}

type SignatureInput struct {
	IsSigned bool   `json:"is_signed"`
	Location string `json:"location"`
	Details  string `json:"details"`
}

type EditionInput struct {
	IsEdition bool `json:"is_edition"`
	Size      *int `json:"numeric_size"`
	APSize    *int `json:"ap_size"`
}

type CreationDateInput struct {
	Type  string `json:"type" binding:"required"`
	Value string `json:"value"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type HistoricalEntryInput struct {
	ID          string `json:"id"`
	Year        string `json:"year"`
	Description string `json:"description"`
}

// SaveRecordRequest carries attribute edits plus the tag and collection
// selection. Absent fields (nil) leave the loaded snapshot untouched; the
// handler turns present ones into typed updates.
type SaveRecordRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Medium      *string `json:"medium"`
	Status      *string `json:"status"`
	Currency    *string `json:"currency"`

	Pricing *PricingInput `json:"pricing"`

	InventoryNumber *string `json:"inventory_number"`
	PrivateNote     *string `json:"private_note"`
	Provenance      *string `json:"provenance"`
	ProvenanceNotes *string `json:"provenance_notes"`
	Location        *string `json:"location"`

	Dimensions   *DimensionsInput   `json:"dimensions"`
	Framing      *FramingInput      `json:"framing"`
	Signature    *SignatureInput    `json:"signature"`
	Edition      *EditionInput      `json:"edition"`
	CreationDate *CreationDateInput `json:"creation_date"`

	Exhibitions *[]HistoricalEntryInput `json:"exhibitions"`
	Literature  *[]HistoricalEntryInput `json:"literature"`

	TagIDs        *[]string `json:"tag_ids"`
	CollectionIDs *[]string `json:"collection_ids"`

	// Images seeds a NEW record with already-uploaded URLs (see POST
	// /uploads). Ignored on update, where the image endpoints own the
	// collection.
	Images []ImageInput `json:"images"`

	ForceWatermark     bool `json:"force_watermark"`
	ForceVisualization bool `json:"force_visualization"`
}

// Updates converts the present fields into typed attribute updates.
func (req *SaveRecordRequest) Updates() []recdomain.Update {
	var ups []recdomain.Update

	if req.Title != nil {
		ups = append(ups, recdomain.SetTitle{Value: *req.Title})
	}
	if req.Description != nil {
		ups = append(ups, recdomain.SetDescription{Value: req.Description})
	}
	if req.Medium != nil {
		ups = append(ups, recdomain.SetMedium{Value: *req.Medium})
	}
	if req.Status != nil {
		ups = append(ups, recdomain.SetStatus{Value: recdomain.Status(*req.Status)})
	}
	if req.Currency != nil {
		ups = append(ups, recdomain.SetCurrency{Value: *req.Currency})
	}
	if req.Pricing != nil {
		ups = append(ups, recdomain.SetPricing{
			Mode:     recdomain.PricingMode(req.Pricing.Mode),
			Price:    req.Pricing.Price,
			MinPrice: req.Pricing.MinPrice,
			MaxPrice: req.Pricing.MaxPrice,
		})
	}
	if req.InventoryNumber != nil {
		ups = append(ups, recdomain.SetInventoryNumber{Value: req.InventoryNumber})
	}
	if req.PrivateNote != nil {
		ups = append(ups, recdomain.SetPrivateNote{Value: req.PrivateNote})
	}
	if req.Provenance != nil {
		ups = append(ups, recdomain.SetProvenance{Value: req.Provenance})
	}
	if req.ProvenanceNotes != nil {
		ups = append(ups, recdomain.SetProvenanceNotes{Value: req.ProvenanceNotes})
	}
	if req.Location != nil {
		ups = append(ups, recdomain.SetLocation{Value: req.Location})
	}
	if req.Dimensions != nil {
		ups = append(ups, recdomain.SetDimensions{
			Width:  req.Dimensions.Width,
			Height: req.Dimensions.Height,
			Depth:  req.Dimensions.Depth,
		})
	}
	if req.Framing != nil {
		ups = append(ups, recdomain.SetFraming{
			IsFramed: req.Framing.IsFramed,
			Details:  req.Framing.Details,
		})
	}
	if req.Signature != nil {
		ups = append(ups, recdomain.SetSignature{
			IsSigned: req.Signature.IsSigned,
			Location: req.Signature.Location,
			Details:  req.Signature.Details,
		})
	}
	if req.Edition != nil {
		ups = append(ups, recdomain.SetEditionFlag{IsEdition: req.Edition.IsEdition})
		if req.Edition.IsEdition && (req.Edition.Size != nil || req.Edition.APSize != nil) {
			sizes := recdomain.SetEditionSizes{Size: 1, APSize: 0}
			if req.Edition.Size != nil {
				sizes.Size = *req.Edition.Size
			}
			if req.Edition.APSize != nil {
				sizes.APSize = *req.Edition.APSize
			}
			ups = append(ups, sizes)
		}
	}
	if req.CreationDate != nil {
		ups = append(ups, recdomain.SetCreationDate{
			Type:  recdomain.DateType(req.CreationDate.Type),
			Value: req.CreationDate.Value,
			Start: req.CreationDate.Start,
			End:   req.CreationDate.End,
		})
	}
	if req.Exhibitions != nil {
		ups = append(ups, recdomain.SetExhibitions{Entries: toEntries(*req.Exhibitions)})
	}
	if req.Literature != nil {
		ups = append(ups, recdomain.SetLiterature{Entries: toEntries(*req.Literature)})
	}

	return ups
}

func toEntries(in []HistoricalEntryInput) []recdomain.HistoricalEntry {
	out := make([]recdomain.HistoricalEntry, len(in))
	for i, e := range in {
		out[i] = recdomain.HistoricalEntry{ID: e.ID, Year: e.Year, Description: e.Description}
	}
	return out
}

// ---------- image requests

type ImageInput struct {
	URL string `json:"url" binding:"required"`
}

type ReorderImagesRequest struct {
	FromIndex *int `json:"from_index" binding:"required"`
	ToIndex   *int `json:"to_index" binding:"required"`
}

type ReplaceImageRequest struct {
	URL string `json:"url" binding:"required"`
}

// ---------- edition requests

type ToggleEditionSaleRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Sold       *bool  `json:"sold" binding:"required"`
	ClearStale bool   `json:"clear_stale"`
}

// ---------- responses

type EditionUnitDTO struct {
	Identifier string `json:"identifier"`
	Sold       bool   `json:"sold"`
}

type SaveResponse struct {
	ID       string   `json:"id"`
	Slug     string   `json:"slug"`
	Warnings []string `json:"warnings,omitempty"`
}

type ValidationErrorResponse struct {
	Error       string            `json:"error"`
	FieldErrors map[string]string `json:"field_errors"`
	Touched     []string          `json:"touched"`
}
