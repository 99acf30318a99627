package timex

import "time"

const (
	// Layout is the persisted timestamp format. Values are local time with no
	// zone; callers must not assume UTC.
	Layout = "2006-01-02 15:04:05"
	// DateLayout is the persisted date format (delivery dates).
	DateLayout = "2006-01-02"
)

// Clock supplies the current time. Tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in the local zone.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Stamp formats t with Layout.
func Stamp(t time.Time) string {
	return t.Format(Layout)
}

// Date formats t with DateLayout.
func Date(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseStamp parses a persisted timestamp in the local zone.
func ParseStamp(s string) (time.Time, error) {
	return time.ParseInLocation(Layout, s, time.Local)
}
