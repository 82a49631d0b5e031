package pii

// Summarize aggregates a full-transcript report. segmentsWithPII is the
// number of segments whose own report was non-empty; callers analyzing
// plain text pass 0.
func Summarize(full Report, segmentsWithPII int) Summary {
	types := make(map[string]int)
	unique := make(map[string][]string)
	seen := make(map[string]map[string]bool)

	for _, ent := range full {
		types[ent.Kind]++
		if seen[ent.Kind] == nil {
			seen[ent.Kind] = make(map[string]bool)
		}
		// deduplicate values per kind, keeping first-seen order
		if !seen[ent.Kind][ent.Text] {
			seen[ent.Kind][ent.Text] = true
			unique[ent.Kind] = append(unique[ent.Kind], ent.Text)
		}
	}

	return Summary{
		TotalPIIItems:      len(full),
		SegmentsWithPII:    segmentsWithPII,
		PIITypes:           types,
		UniquePIIByType:    unique,
		HasPrivacyConcerns: len(full) > 0,
	}
}
