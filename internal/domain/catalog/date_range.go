package catalog

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DateRange is a half-open [Lower, Upper) span of calendar dates used for
// imprecise ascent dates. A nil bound is unbounded.
type DateRange struct {
	Lower *time.Time `json:"lower,omitempty"`
	Upper *time.Time `json:"upper,omitempty"`
}

func (r DateRange) Validate() error {
	if r.Lower != nil && r.Upper != nil && !dateOnly(*r.Upper).After(dateOnly(*r.Lower)) {
		return fmt.Errorf("date range upper bound must be after lower bound")
	}
	return nil
}

func (r DateRange) Value() (driver.Value, error) {
	rng := pgtype.Range[pgtype.Date]{
		LowerType: pgtype.Unbounded,
		UpperType: pgtype.Unbounded,
		Valid:     true,
	}
	if r.Lower != nil {
		rng.Lower = pgtype.Date{Time: dateOnly(*r.Lower), Valid: true}
		rng.LowerType = pgtype.Inclusive
	}
	if r.Upper != nil {
		rng.Upper = pgtype.Date{Time: dateOnly(*r.Upper), Valid: true}
		rng.UpperType = pgtype.Exclusive
	}
	buf, err := pgtype.NewMap().Encode(pgtype.DaterangeOID, pgtype.TextFormatCode, rng, nil)
	if err != nil {
		return nil, fmt.Errorf("encode date range: %w", err)
	}
	return string(buf), nil
}

func (r *DateRange) Scan(src any) error {
	raw, err := scanBytes(src)
	if err != nil || raw == nil {
		*r = DateRange{}
		return err
	}
	var rng pgtype.Range[pgtype.Date]
	if err := pgtype.NewMap().Scan(pgtype.DaterangeOID, pgtype.TextFormatCode, raw, &rng); err != nil {
		return fmt.Errorf("scan date range: %w", err)
	}
	out := DateRange{}
	if rng.LowerType == pgtype.Inclusive || rng.LowerType == pgtype.Exclusive {
		lower := rng.Lower.Time
		if rng.LowerType == pgtype.Exclusive {
			lower = lower.AddDate(0, 0, 1)
		}
		out.Lower = &lower
	}
	if rng.UpperType == pgtype.Inclusive || rng.UpperType == pgtype.Exclusive {
		upper := rng.Upper.Time
		if rng.UpperType == pgtype.Inclusive {
			upper = upper.AddDate(0, 0, 1)
		}
		out.Upper = &upper
	}
	*r = out
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
