// Package aggregates defines domain-facing aggregate contracts for the climbing catalog.
//
// These contracts avoid persistence/transport implementation details and represent
// semantic write boundaries where containment and association invariants must be
// enforced atomically.
package aggregates
