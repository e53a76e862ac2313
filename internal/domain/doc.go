// Package domain models the raw Aadhaar activity streams and the derived
// district-week records produced by the early-warning analytics pipeline.
//
// # Data Sources
//
// Three independent daily event logs feed the pipeline, all sharing the same
// leading columns (date, pincode, state, district) followed by age-bracket
// counts specific to the stream:
//
//	enrolment:   age_0_5, age_5_17, age_18_greater
//	demographic: demo_age_5_17, demo_age_17_
//	biometric:   bio_age_5_17, bio_age_17_
//
// Dates are day-first (DD-MM-YYYY). Rows whose date fails to parse are kept
// but flagged invalid; the weekly aggregator excludes them from bucketing and
// the drop count is surfaced through logs and metrics.
//
// # Geographic Canonicalization
//
// Reported state and district labels are noisy (spelling variants, casing,
// stale names). A pincode reference table maps each postal code to a single
// canonical (state, district) pair, uppercased and trimmed, with the first
// entry winning for duplicated pincodes. Rows whose pincode is absent from
// the reference keep their reported labels unchanged; resolution is a soft
// fallback, never a validation gate. See [CanonicalizeRegions].
//
// # Week Identity
//
// A district-week is keyed by (week, state, district), where week is the
// start date of the 7-day span containing the event date. Weeks are anchored
// on a fixed weekday, Tuesday by default, which reproduces the Tuesday to
// Monday periods of the legacy aggregation. See [WeekStart].
package domain
