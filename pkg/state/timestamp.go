// SPDX-License-Identifier: Apache-2.0

package state

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// timestampLayouts are the formats a jetbase_migrations/jetbase_lock
// timestamp column can come back as across backends: PostgreSQL, MySQL, and
// Snowflake/Databricks drivers hand database/sql a time.Time directly, but
// SQLite stores these columns as TEXT: applied_at as STRFTIME output, and
// locked_at as the driver's time.Time.String() rendering of the bound
// value, so Timestamp accepts all of these.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// Timestamp wraps a nullable, cross-dialect-scannable point in time.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner, accepting a native time.Time (PostgreSQL,
// MySQL, Snowflake, Databricks drivers), a formatted string/[]byte (SQLite),
// or NULL.
func (t *Timestamp) Scan(src any) error {
	if src == nil {
		*t = Timestamp{}
		return nil
	}

	switch v := src.(type) {
	case time.Time:
		*t = Timestamp{Time: v, Valid: true}
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("state: cannot scan %T into Timestamp", src)
	}
}

func (t *Timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = Timestamp{Time: parsed, Valid: true}
			return nil
		}
	}
	return fmt.Errorf("state: unrecognized timestamp format %q", s)
}

// Value implements driver.Valuer so a Timestamp can also be passed back as a
// bind parameter.
func (t Timestamp) Value() (driver.Value, error) {
	if !t.Valid {
		return nil, nil
	}
	return t.Time, nil
}
