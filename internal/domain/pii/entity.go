package pii

// Entity is one detector's claim that a substring is PII.
// Start/End are half-open offsets into the analyzed text.
type Entity struct {
	Kind       string  `json:"type"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Source     string  `json:"model"`

	// Ensemble metadata, set only when 2+ overlapping detections were
	// merged into this entity.
	EnsembleSources       []string `json:"ensemble_models,omitempty"`
	EnsembleCount         int      `json:"ensemble_count,omitempty"`
	EnsembleAvgConfidence float64  `json:"ensemble_avg_confidence,omitempty"`
}

// Report is the reconciled detection set for one text unit,
// ordered ascending by Start.
type Report []Entity

// SegmentReport holds the detections for one timed transcript segment.
// Segments without PII are never included in a result.
type SegmentReport struct {
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
	PII       Report `json:"pii"`
}

// Summary aggregates a full-transcript report.
type Summary struct {
	TotalPIIItems      int                 `json:"total_pii_items"`
	SegmentsWithPII    int                 `json:"segments_with_pii"`
	PIITypes           map[string]int      `json:"pii_types"`
	UniquePIIByType    map[string][]string `json:"unique_pii_by_type"`
	HasPrivacyConcerns bool                `json:"has_privacy_concerns"`
}
