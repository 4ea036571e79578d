package analysis

import (
	"time"
)

// CalculateParams control one correlation run. Zero values fall back to the
// documented defaults so a partially-filled struct stays safe.
type CalculateParams struct {
	// WindowStart/WindowEnd bound the data window the raw logs were loaded
	// for; occurrences without a full lookback inside it are not counted.
	WindowStart time.Time
	WindowEnd   time.Time

	// TimeWindowHours is the overall association window: it caps which lag
	// buckets are considered and bounds the forward window an exposure must
	// stay outcome-free in to count as a quiet observation.
	TimeWindowHours int

	// MinConfidence filters the final records. MinSampleSize drops pairs
	// before scoring; SmoothingK is the k in confidence = n/(n+k).
	MinConfidence float64
	MinSampleSize int
	SmoothingK    float64
}

const (
	DefaultTimeWindowHours = 48
	DefaultMinConfidence   = 0.3
	DefaultMinSampleSize   = 3
	DefaultSmoothingK      = 5.0
)

func (p *CalculateParams) applyDefaults() {
	if p.TimeWindowHours <= 0 {
		p.TimeWindowHours = DefaultTimeWindowHours
	}
	if p.MinConfidence <= 0 {
		p.MinConfidence = DefaultMinConfidence
	}
	if p.MinSampleSize <= 0 {
		p.MinSampleSize = DefaultMinSampleSize
	}
	if p.SmoothingK <= 0 {
		p.SmoothingK = DefaultSmoothingK
	}
}

// bucketObservations holds the occurrence evidence of one (category,
// outcome, bucket) triple: severities split by whether the category was
// present in the bucket before each occurrence.
type bucketObservations struct {
	bucket    LagBucket
	exposed   []float64
	unexposed []float64
}

func (b *bucketObservations) occurrenceCount() int {
	return len(b.exposed) + len(b.unexposed)
}

// occurrenceScore is the association over occurrence units alone, used to
// rank candidate buckets. Quiet exposures are bucket-independent, so they
// do not participate in the choice of lag window.
func (b *bucketObservations) occurrenceScore() float64 {
	return clamp((meanOf(b.exposed)-meanOf(b.unexposed))/MaxSeverity, -1, 1)
}

// CalculateCorrelations scores every (exposure category, outcome) pair seen
// in the window. For each pair, candidate lag buckets are ranked on
// occurrence evidence by |score|·confidence and the best one retained,
// resolving which time window best explains the outcome; the pair's quiet
// exposures then fold into that record as severity-zero exposed units.
// A bucket in which the category never preceded the outcome is not a
// candidate: without a single exposed occurrence there is no temporal
// association to score at that lag. Empty or too-sparse history yields an
// empty slice.
func CalculateCorrelations(idx *ExposureIndex, outcomes []OutcomeEvent, params CalculateParams) []PairCorrelation {
	params.applyDefaults()

	categories := idx.Categories()
	groups, outcomeIDs := GroupOutcomes(outcomes)
	if len(categories) == 0 || len(outcomeIDs) == 0 {
		return []PairCorrelation{}
	}

	window := time.Duration(params.TimeWindowHours) * time.Hour
	buckets := qualifyingBuckets(params.TimeWindowHours)
	results := make([]PairCorrelation, 0)

	for _, category := range categories {
		exposures := idx.EventsFor(category)
		for _, outcomeID := range outcomeIDs {
			occurrences := groups[outcomeID]

			var best *bucketObservations
			var bestWeight float64
			for _, bucket := range buckets {
				obs := collectBucketObservations(idx, category, occurrences, bucket, params)
				if len(obs.exposed) == 0 || obs.occurrenceCount() < params.MinSampleSize {
					continue
				}
				score := obs.occurrenceScore()
				weight := absOf(score) * confidenceFor(obs.occurrenceCount(), params.SmoothingK)
				// nearest-first iteration: ties keep the earlier bucket
				if best == nil || weight > bestWeight {
					o := obs
					best = &o
					bestWeight = weight
				}
			}
			if best == nil {
				continue
			}

			quiet := countQuietExposures(exposures, occurrences, window, params.WindowEnd)
			pair := scorePair(category, outcomeID, best, quiet, params.SmoothingK)
			if pair.Confidence < params.MinConfidence {
				continue
			}
			results = append(results, pair)
		}
	}
	return results
}

func absOf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func qualifyingBuckets(timeWindowHours int) []LagBucket {
	limit := time.Duration(timeWindowHours) * time.Hour
	out := make([]LagBucket, 0, len(DefaultLagBuckets))
	for _, b := range DefaultLagBuckets {
		if b.To <= limit {
			out = append(out, b)
		}
	}
	return out
}

// collectBucketObservations splits the outcome occurrences by the
// category's presence in the bucket. Occurrences count only when their full
// lookback fits inside the data window.
func collectBucketObservations(idx *ExposureIndex, category string, occurrences []OutcomeEvent, bucket LagBucket, params CalculateParams) bucketObservations {
	obs := bucketObservations{bucket: bucket}
	for _, occ := range occurrences {
		if occ.OccurredAt.Add(-bucket.To).Before(params.WindowStart) {
			continue
		}
		if idx.PresentInBucket(category, occ.OccurredAt, bucket) {
			obs.exposed = append(obs.exposed, occ.Severity)
		} else {
			obs.unexposed = append(obs.unexposed, occ.Severity)
		}
	}
	return obs
}

// countQuietExposures counts the category's exposures that no occurrence of
// the outcome followed anywhere inside the association window. The
// classification is per pair, not per bucket: an exposure whose symptom
// arrived at any lag is already represented by that occurrence's own
// observation. Exposures whose forward window is not fully observable are
// excluded.
func countQuietExposures(exposures []ExposureEvent, occurrences []OutcomeEvent, window time.Duration, windowEnd time.Time) int {
	quiet := 0
	for _, exp := range exposures {
		if exp.OccurredAt.Add(window).After(windowEnd) {
			continue
		}
		if outcomeFollowed(exp.OccurredAt, occurrences, window) {
			continue
		}
		quiet++
	}
	return quiet
}

// outcomeFollowed reports whether any occurrence falls in [e, e+window)
// after an exposure at e.
func outcomeFollowed(exposureAt time.Time, occurrences []OutcomeEvent, window time.Duration) bool {
	hi := exposureAt.Add(window)
	for _, occ := range occurrences {
		if !occ.OccurredAt.Before(exposureAt) && occ.OccurredAt.Before(hi) {
			return true
		}
	}
	return false
}

// scorePair builds the final record from the winning bucket's occurrences
// plus the pair's quiet exposures as severity-zero exposed units, so "ate
// it and nothing happened" tempers the score and grows the sample. A side
// with no units contributes mean zero.
func scorePair(category, outcomeID string, obs *bucketObservations, quiet int, smoothingK float64) PairCorrelation {
	exposed := make([]float64, 0, len(obs.exposed)+quiet)
	exposed = append(exposed, obs.exposed...)
	for i := 0; i < quiet; i++ {
		exposed = append(exposed, 0)
	}

	exposedMean := meanOf(exposed)
	unexposedMean := meanOf(obs.unexposed)
	score := clamp((exposedMean-unexposedMean)/MaxSeverity, -1, 1)
	n := len(exposed) + len(obs.unexposed)

	return PairCorrelation{
		Category:      category,
		OutcomeID:     outcomeID,
		Score:         score,
		Confidence:    confidenceFor(n, smoothingK),
		SampleSize:    n,
		LagBucket:     obs.bucket.Label,
		ExposedCount:  len(exposed),
		UnexposedN:    len(obs.unexposed),
		ExposedMean:   exposedMean,
		UnexposedMean: unexposedMean,
	}
}
