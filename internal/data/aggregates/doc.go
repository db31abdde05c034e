// Package aggregates implements the catalog's write boundaries.
//
// Each write runs in one transaction through executeWrite, composes the
// table-level repos from internal/data/repos, appends its change log rows in
// the same transaction, and hands the committed events to the configured
// publishers after commit.
package aggregates
