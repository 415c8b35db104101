// Package mstime provides a millisecond precision time.Time wrapper
package mstime

import (
	"time"
)

const nanosecondsInMillisecond = int64(time.Millisecond)

// Time is a wrapper for time.Time that guarantees all of its methods will return a millisecond precision times.
type Time struct {
	time time.Time
}

// String returns the time formatted using the format string
//	"2006-01-02 15:04:05.999999999 -0700 MST"
func (t Time) String() string {
	return t.time.String()
}

// UnixSeconds returns t as a Unix time, the number of seconds elapsed since January 1, 1970 UTC.
func (t Time) UnixSeconds() int64 {
	return t.time.Unix()
}

// UnixMilliseconds returns t as a Unix time, the number of milliseconds elapsed since January 1, 1970 UTC.
func (t Time) UnixMilliseconds() int64 {
	return t.time.UnixNano() / nanosecondsInMillisecond
}

// Add returns the time t+d.
func (t Time) Add(d time.Duration) Time {
	return newMSTime(t.time.Add(d))
}

// After reports whether the time instant t is after u.
func (t Time) After(u Time) bool {
	return t.time.After(u.time)
}

// Before reports whether the time instant t is before u.
func (t Time) Before(u Time) bool {
	return t.time.Before(u.time)
}

// Sub returns the duration t-u.
func (t Time) Sub(u Time) time.Duration {
	return t.time.Sub(u.time)
}

// Millisecond returns the millisecond offset within the second specified by t, in the range [0, 999].
func (t Time) Millisecond() int {
	return t.time.Nanosecond() / int(nanosecondsInMillisecond)
}

// ToNativeTime converts t to time.Time
func (t Time) ToNativeTime() time.Time {
	return t.time
}

// Now returns the current local time, with precision of one millisecond.
func Now() Time {
	return ToMSTime(time.Now())
}

// Since returns the time elapsed since t.
func Since(t Time) time.Duration {
	return Now().Sub(t)
}

// UnixMilliseconds returns the local Time corresponding to the given Unix time, ms milliseconds since January 1, 1970 UTC.
func UnixMilliseconds(ms int64) Time {
	return newMSTime(time.Unix(0, ms*nanosecondsInMillisecond))
}

// ToMSTime converts t to Time, discarding any precision smaller than one millisecond.
func ToMSTime(t time.Time) Time {
	return newMSTime(clampToMillisecond(t))
}

func newMSTime(t time.Time) Time {
	return Time{time: t}
}

func clampToMillisecond(t time.Time) time.Time {
	return t.Truncate(time.Millisecond)
}
