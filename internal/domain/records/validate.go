package records

import "strings"

// ValidationResult is the projection the editor shows inline: one overall
// boolean plus an error message per failing field.
type ValidationResult struct {
	Valid       bool
	FieldErrors map[string]string
}

type rule struct {
	field string
	check func(r Record, imageCount int) string
}

// Evaluation is pure and re-run on every attribute or image mutation; it
// never gates the mutation itself, only the downstream save.
var rules = []rule{
	{"title", func(r Record, _ int) string {
		if strings.TrimSpace(r.Title) == "" {
			return "title is required"
		}
		return ""
	}},
	{"medium", func(r Record, _ int) string {
		if strings.TrimSpace(r.Medium) == "" {
			return "medium is required"
		}
		return ""
	}},
	{"price", func(r Record, _ int) string {
		switch r.PricingMode {
		case PricingFixed, PricingNegotiable:
			if r.Price == nil || *r.Price <= 0 {
				return "price must be a positive amount"
			}
		case PricingOnRequest:
			if r.Price != nil {
				return "price must be empty for on-request pricing"
			}
		default:
			return "unknown pricing mode"
		}
		return ""
	}},
	{"images", func(_ Record, imageCount int) string {
		if imageCount < 1 {
			return "at least one image is required"
		}
		return ""
	}},
	{"creation_date", func(r Record, _ int) string {
		cd := r.CreationDate
		if cd == nil {
			return ""
		}
		switch cd.Type {
		case DateFullDate, DateYearOnly, DateCirca:
			if strings.TrimSpace(cd.Value) == "" {
				return "date value is required"
			}
		case DateRange:
			if strings.TrimSpace(cd.Start) == "" || strings.TrimSpace(cd.End) == "" {
				return "date range needs both start and end"
			}
		}
		return ""
	}},
	{"dimensions", func(r Record, _ int) string {
		if r.Dimensions == nil || r.Dimensions.Width == nil || r.Dimensions.Height == nil {
			return "width and height are required"
		}
		return ""
	}},
	{"framing", func(r Record, _ int) string {
		if r.Framing != nil && r.Framing.IsFramed && strings.TrimSpace(r.Framing.Details) == "" {
			return "framing details are required for framed works"
		}
		return ""
	}},
	{"signature", func(r Record, _ int) string {
		if r.Signature != nil && r.Signature.IsSigned && strings.TrimSpace(r.Signature.Location) == "" {
			return "signature location is required for signed works"
		}
		return ""
	}},
	{"edition", func(r Record, _ int) string {
		if r.Edition != nil && r.Edition.IsEdition {
			if r.Edition.Size < 1 {
				return "edition size must be at least 1"
			}
			if r.Edition.APSize < 0 {
				return "artist proof count cannot be negative"
			}
		}
		return ""
	}},
	{"status", func(r Record, _ int) string {
		if !r.Status.Valid() {
			return "status is required"
		}
		return ""
	}},
}

func Evaluate(r Record, imageCount int) ValidationResult {
	res := ValidationResult{Valid: true, FieldErrors: map[string]string{}}
	for _, rl := range rules {
		if msg := rl.check(r, imageCount); msg != "" {
			res.Valid = false
			res.FieldErrors[rl.field] = msg
		}
	}
	return res
}

// RuleFields lists every field a rule can touch, in rule order. On a failed
// save all of them are marked touched so inline errors show at once.
func RuleFields() []string {
	fields := make([]string, len(rules))
	for i, rl := range rules {
		fields[i] = rl.field
	}
	return fields
}
