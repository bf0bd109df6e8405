// Package pgtypes converts between pgx wire types and the Go types used by the services.
package pgtypes

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// NumericFromDecimal converts d into a NUMERIC parameter. A nil d becomes NULL.
func NumericFromDecimal(d *decimal.Decimal) pgtype.Numeric {
	if d == nil {
		return pgtype.Numeric{}
	}
	return pgtype.Numeric{
		Int:   d.Coefficient(),
		Exp:   d.Exponent(),
		Valid: true,
	}
}

// DecimalFromNumeric converts a scanned NUMERIC. NULL yields nil.
// NaN and infinities have no decimal form and are rejected.
func DecimalFromNumeric(n pgtype.Numeric) (*decimal.Decimal, error) {
	if !n.Valid {
		return nil, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return nil, fmt.Errorf("numeric value is not finite")
	}
	if n.Int == nil {
		d := decimal.Zero
		return &d, nil
	}
	d := decimal.NewFromBigInt(n.Int, n.Exp)
	return &d, nil
}

// Timestamptz wraps t as a non-null TIMESTAMPTZ
func Timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// TimestamptzPtr wraps t, mapping nil to NULL
func TimestamptzPtr(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return Timestamptz(*t)
}

// TimePtr unwraps a TIMESTAMPTZ in UTC, mapping NULL to nil
func TimePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time.UTC()
	return &t
}

// UUID wraps id as a non-null UUID
func UUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// StringPtr maps an empty string to nil
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue maps nil to an empty string
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
