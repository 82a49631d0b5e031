package pii

import (
	"context"
	"log"
	"sort"
	"sync"
)

// Ensemble runs a fixed pool of detectors over a text unit and
// reconciles their overlapping detections into one voted report.
// The pool is set at construction and never changes afterwards.
type Ensemble struct {
	detectors []Detector
}

func NewEnsemble(detectors ...Detector) *Ensemble {
	pool := make([]Detector, len(detectors))
	copy(pool, detectors)
	return &Ensemble{detectors: pool}
}

// detection is one detector invocation's outcome. Failures are carried
// as values so a single broken detector never aborts the ensemble.
type detection struct {
	entities []Entity
	err      error
}

// Reconcile invokes every detector on text and merges the raw spans.
// A detector that returns an error is logged and dropped for this call;
// the remaining detectors still contribute. The result is ordered
// ascending by Start.
func (e *Ensemble) Reconcile(ctx context.Context, text string) Report {
	if text == "" {
		return Report{}
	}

	results := make([]detection, len(e.detectors))
	var wg sync.WaitGroup
	for i, d := range e.detectors {
		wg.Add(1)
		go func(i int, d Detector) {
			defer wg.Done()
			ents, err := d.Detect(ctx, text)
			results[i] = detection{entities: ents, err: err}
		}(i, d)
	}
	wg.Wait()

	// Collect in registration order so the merge tie-breaks stay
	// deterministic across calls.
	var raw []Entity
	for i, res := range results {
		if res.err != nil {
			log.Printf("detector %s failed: %v", e.detectors[i].Name(), res.err)
			continue
		}
		for _, ent := range res.entities {
			if ent.Source == "" {
				ent.Source = e.detectors[i].Name()
			}
			raw = append(raw, ent)
		}
	}

	merged := mergeOverlapping(raw)
	if merged == nil {
		return Report{}
	}

	// Already ordered by the sweep; re-sort as a final guarantee.
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Start < merged[j].Start })
	return Report(merged)
}

// mergeOverlapping groups raw spans into overlap clusters and picks one
// representative per cluster. A cluster opens at an anchor span and
// absorbs following sorted spans while they intersect the anchor's
// interval; the first span that misses the anchor closes the cluster,
// even if it overlaps a later member. A chain A-B-C where C only
// touches B therefore yields two clusters, {A,B} and {C}.
func mergeOverlapping(entities []Entity) []Entity {
	if len(entities) == 0 {
		return nil
	}

	sort.SliceStable(entities, func(i, j int) bool { return entities[i].Start < entities[j].Start })

	var merged []Entity
	i := 0
	for i < len(entities) {
		anchor := entities[i]
		j := i + 1
		for j < len(entities) {
			next := entities[j]
			if next.Start < anchor.End && next.End > anchor.Start {
				j++
			} else {
				break
			}
		}

		cluster := entities[i:j]
		if len(cluster) == 1 {
			merged = append(merged, anchor)
		} else {
			best := 0
			sum := 0.0
			sources := make([]string, 0, len(cluster))
			for k, ent := range cluster {
				sum += ent.Confidence
				// duplicates are kept on purpose: the same detector may
				// produce two overlapping candidates
				sources = append(sources, ent.Source)
				if ent.Confidence > cluster[best].Confidence {
					best = k
				}
			}
			rep := cluster[best]
			rep.EnsembleSources = sources
			rep.EnsembleCount = len(cluster)
			rep.EnsembleAvgConfidence = sum / float64(len(cluster))
			merged = append(merged, rep)
		}

		i = j
	}
	return merged
}
