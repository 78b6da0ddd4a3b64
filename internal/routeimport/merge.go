package routeimport

import "github.com/polarisid/smartos-sub000/internal/models"

// TagOverrides holds stop tags changed explicitly in the edit form, keyed by order id
type TagOverrides map[string]models.StopTag

// Merge reconciles freshly parsed stops with the stops of the saved route.
//
// The result follows next for stop order, stop fields and the set of parts. From
// previous it keeps what operators entered after the import: the stop tag (unless
// overrides names the stop) and the tracking code of every part whose code is still
// listed. A code listed more than once is matched occurrence by occurrence: the nth
// part with a code takes the tracking code of the nth previous part with that code.
// Parts missing from next are dropped. Neither input is modified.
func Merge(next, previous []models.Stop, overrides TagOverrides) []models.Stop {
	prevByID := make(map[string]*models.Stop, len(previous))
	for i := range previous {
		if _, seen := prevByID[previous[i].OrderID]; !seen {
			prevByID[previous[i].OrderID] = &previous[i]
		}
	}

	merged := make([]models.Stop, 0, len(next))
	for _, n := range next {
		out := cloneStop(n)

		prev, found := prevByID[n.OrderID]
		if found && prev.Tag.Valid() {
			out.Tag = prev.Tag
		}

		var tracking map[string][]string
		if found {
			tracking = trackingByCode(prev.Parts)
		}
		for i := range out.Parts {
			code := out.Parts[i].Code
			out.Parts[i].TrackingCode = ""
			if codes := tracking[code]; len(codes) > 0 {
				out.Parts[i].TrackingCode = codes[0]
				tracking[code] = codes[1:]
			}
		}

		if tag, ok := overrides[n.OrderID]; ok && tag.Valid() {
			out.Tag = tag
		}
		if !out.Tag.Valid() {
			out.Tag = models.StopTagStandard
		}
		merged = append(merged, out)
	}
	return merged
}

// trackingByCode lists the tracking codes of each part code in part order
func trackingByCode(parts []models.Part) map[string][]string {
	m := make(map[string][]string, len(parts))
	for _, p := range parts {
		m[p.Code] = append(m[p.Code], p.TrackingCode)
	}
	return m
}

func cloneStop(s models.Stop) models.Stop {
	out := s
	out.Parts = make([]models.Part, len(s.Parts))
	copy(out.Parts, s.Parts)
	return out
}
