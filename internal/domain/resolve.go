package domain

import (
	"log/slog"
	"strings"
)

// RegionRef is the canonical (state, district) pair for a pincode.
type RegionRef struct {
	State    string
	District string
}

// PincodeEntry is one raw reference-table row before normalization.
type PincodeEntry struct {
	Pincode  string
	District string
	State    string
}

// RegionReference maps pincodes to canonical region labels. Labels are
// uppercased and whitespace-trimmed; when the reference table contains a
// pincode more than once, the first entry wins.
type RegionReference struct {
	byPin map[string]RegionRef
}

// NewRegionReference builds the lookup table from raw reference rows.
func NewRegionReference(entries []PincodeEntry) *RegionReference {
	byPin := make(map[string]RegionRef, len(entries))
	for _, e := range entries {
		pin := strings.TrimSpace(e.Pincode)
		if pin == "" {
			continue
		}
		if _, ok := byPin[pin]; ok {
			continue
		}
		byPin[pin] = RegionRef{
			State:    strings.ToUpper(strings.TrimSpace(e.State)),
			District: strings.ToUpper(strings.TrimSpace(e.District)),
		}
	}
	return &RegionReference{byPin: byPin}
}

// Lookup returns the canonical region for a pincode.
func (r *RegionReference) Lookup(pin string) (RegionRef, bool) {
	ref, ok := r.byPin[strings.TrimSpace(pin)]
	return ref, ok
}

// Len reports the number of unique pincodes in the reference.
func (r *RegionReference) Len() int {
	return len(r.byPin)
}

// ResolutionReport captures the data-quality audit for one stream's
// canonicalization pass.
type ResolutionReport struct {
	Stream          Stream
	Rows            int
	UnresolvedPins  int // distinct pincodes absent from the reference
	StatesBefore    int
	StatesAfter     int
	DistrictsBefore int
	DistrictsAfter  int
}

// CanonicalizeRegions rewrites each row's state and district labels from the
// pincode reference. Rows whose pincode is not in the reference keep their
// originally reported labels; no row is ever dropped. The returned report
// carries the before/after distinct-label counts and the count of distinct
// unresolved pincodes.
func CanonicalizeRegions(rows []RawRow, ref *RegionReference, stream Stream) ([]RawRow, ResolutionReport) {
	report := ResolutionReport{Stream: stream, Rows: len(rows)}

	statesBefore := make(map[string]struct{})
	districtsBefore := make(map[string]struct{})
	statesAfter := make(map[string]struct{})
	districtsAfter := make(map[string]struct{})
	unresolved := make(map[string]struct{})

	out := make([]RawRow, len(rows))
	for i, row := range rows {
		statesBefore[row.State] = struct{}{}
		districtsBefore[row.District] = struct{}{}

		if canonical, ok := ref.Lookup(row.Pincode); ok {
			row.State = canonical.State
			row.District = canonical.District
		} else {
			unresolved[strings.TrimSpace(row.Pincode)] = struct{}{}
		}

		statesAfter[row.State] = struct{}{}
		districtsAfter[row.District] = struct{}{}
		out[i] = row
	}

	report.UnresolvedPins = len(unresolved)
	report.StatesBefore = len(statesBefore)
	report.StatesAfter = len(statesAfter)
	report.DistrictsBefore = len(districtsBefore)
	report.DistrictsAfter = len(districtsAfter)
	return out, report
}

// Log emits the audit counts for one stream at info level.
func (r ResolutionReport) Log(logger *slog.Logger) {
	logger.Info("region canonicalization",
		"stream", r.Stream,
		"rows", r.Rows,
		"unresolved_pincodes", r.UnresolvedPins,
		"states_before", r.StatesBefore,
		"states_after", r.StatesAfter,
		"districts_before", r.DistrictsBefore,
		"districts_after", r.DistrictsAfter,
	)
}
