package rosbag

import (
	"fmt"
	"time"
)

// Time is a ROS bag timestamp: seconds and nanoseconds since the UNIX
// epoch, each stored as the 32-bit field the bag format uses on the wire.
type Time struct {
	Secs  uint32
	Nsecs uint32
}

// ZERO is the additive identity and the default for an absent bound.
var ZERO = Time{Secs: 0, Nsecs: 0}

// MIN is the smallest representable non-zero Time.
var MIN = Time{Secs: 0, Nsecs: 1}

// MAX is the largest representable Time.
var MAX = Time{Secs: ^uint32(0), Nsecs: 999999999}

// timeFrom decodes an 8-byte little-endian (secs, nsecs) pair.
func timeFrom(buf []byte) (Time, error) {
	secs, err := parseU32LEAt(buf, 0)
	if err != nil {
		return Time{}, err
	}
	nsecs, err := parseU32LEAt(buf, 4)
	if err != nil {
		return Time{}, err
	}
	return Time{Secs: secs, Nsecs: nsecs}, nil
}

// nanos returns t's total nanosecond position since the epoch, which is
// what ordering and duration arithmetic are defined over.
func (t Time) nanos() uint64 {
	return uint64(t.Secs)*1e9 + uint64(t.Nsecs)
}

// Before reports whether t occurs strictly before other.
func (t Time) Before(other Time) bool {
	return t.nanos() < other.nanos()
}

// After reports whether t occurs strictly after other.
func (t Time) After(other Time) bool {
	return t.nanos() > other.nanos()
}

// Equal reports whether t and other denote the same instant.
func (t Time) Equal(other Time) bool {
	return t.Secs == other.Secs && t.Nsecs == other.Nsecs
}

// Compare returns -1, 0, or 1 as t is before, equal to, or after other.
func (t Time) Compare(other Time) int {
	switch {
	case t.nanos() < other.nanos():
		return -1
	case t.nanos() > other.nanos():
		return 1
	default:
		return 0
	}
}

// Sub returns the non-negative wall-clock duration from other to t.
// Callers must not pass an other that occurs after t.
func (t Time) Sub(other Time) time.Duration {
	return time.Duration(int64(t.nanos()) - int64(other.nanos()))
}

// Epoch returns t as a floating-point UNIX epoch timestamp.
func (t Time) Epoch() float64 {
	return float64(t.Secs) + float64(t.Nsecs)*1e-9
}

// UTC returns t as a calendar instant in UTC, for presentation layers
// (e.g. the CLI's "info" output) that want a human-readable timestamp.
func (t Time) UTC() time.Time {
	return time.Unix(int64(t.Secs), int64(t.Nsecs)).UTC()
}

// String formats t as an epoch float, matching how the original bag
// tooling prints timestamps.
func (t Time) String() string {
	return fmt.Sprintf("%.9f", t.Epoch())
}
