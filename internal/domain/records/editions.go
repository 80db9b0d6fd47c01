package records

import "fmt"

// EditionUnits derives the full ordered identifier space from the two size
// parameters: the numeric run first, then the artist-proof run. Units are
// never persisted; only the sold subset is.
func EditionUnits(e *Edition) []string {
	if e == nil || !e.IsEdition {
		return nil
	}
	units := make([]string, 0, e.Size+e.APSize)
	for n := 1; n <= e.Size; n++ {
		units = append(units, fmt.Sprintf("%d/%d", n, e.Size))
	}
	for n := 1; n <= e.APSize; n++ {
		units = append(units, fmt.Sprintf("AP %d/%d", n, e.APSize))
	}
	return units
}

// IsSold reports membership of one identifier in the sold set.
func (e *Edition) IsSold(identifier string) bool {
	if e == nil {
		return false
	}
	for _, id := range e.SoldEditions {
		if id == identifier {
			return true
		}
	}
	return false
}

// soldSetWith returns the sold set with identifier added or removed.
// Idempotent in both directions and never touches other identifiers.
func soldSetWith(set []string, identifier string, sold bool) []string {
	out := make([]string, 0, len(set)+1)
	for _, id := range set {
		if id != identifier {
			out = append(out, id)
		}
	}
	if sold {
		out = append(out, identifier)
	}
	return out
}

// PruneSoldEditions drops sold identifiers that fall outside the currently
// generated sequence. Shrinking the sizes does NOT do this automatically;
// it only happens on an explicit request, so a mistyped size cannot
// silently lose sales data.
func PruneSoldEditions(e *Edition) *Edition {
	if e == nil || len(e.SoldEditions) == 0 {
		return e
	}
	valid := make(map[string]bool, e.Size+e.APSize)
	for _, id := range EditionUnits(e) {
		valid[id] = true
	}
	kept := make([]string, 0, len(e.SoldEditions))
	for _, id := range e.SoldEditions {
		if valid[id] {
			kept = append(kept, id)
		}
	}
	out := *e
	out.SoldEditions = kept
	return &out
}
