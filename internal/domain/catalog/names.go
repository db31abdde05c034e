package catalog

import (
	"database/sql/driver"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// Names is an ordered list of optional names. Order is display order; nil
// entries are placeholders. Persisted as text[] on postgres and as the same
// array literal in a TEXT column on sqlite.
type Names []*string

func NamesOf(names ...string) Names {
	out := make(Names, 0, len(names))
	for _, n := range names {
		n := n
		out = append(out, &n)
	}
	return out
}

func (n Names) Contains(name string) bool {
	for _, v := range n {
		if v != nil && *v == name {
			return true
		}
	}
	return false
}

// Append adds name unless it is already present.
func (n Names) Append(name string) (Names, bool) {
	if n.Contains(name) {
		return n, false
	}
	out := make(Names, len(n), len(n)+1)
	copy(out, n)
	return append(out, &name), true
}

// Without drops every occurrence of name and reports how many were removed.
func (n Names) Without(name string) (Names, int) {
	out := make(Names, 0, len(n))
	removed := 0
	for _, v := range n {
		if v != nil && *v == name {
			removed++
			continue
		}
		out = append(out, v)
	}
	return out, removed
}

func (n Names) Value() (driver.Value, error) {
	elems := []*string(n)
	if elems == nil {
		elems = []*string{}
	}
	buf, err := pgtype.NewMap().Encode(pgtype.TextArrayOID, pgtype.TextFormatCode, elems, nil)
	if err != nil {
		return nil, fmt.Errorf("encode names: %w", err)
	}
	return string(buf), nil
}

func (n *Names) Scan(src any) error {
	raw, err := scanBytes(src)
	if err != nil || raw == nil {
		*n = Names{}
		return err
	}
	var out []*string
	if err := pgtype.NewMap().Scan(pgtype.TextArrayOID, pgtype.TextFormatCode, raw, &out); err != nil {
		return fmt.Errorf("scan names: %w", err)
	}
	if out == nil {
		out = []*string{}
	}
	*n = Names(out)
	return nil
}

func scanBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan source %T", src)
	}
}
