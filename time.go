package escrowd

import (
	"encoding/json"
	"math"
	"time"

	"github.com/iov-one/escrowd/errors"
)

// UnixTime represents a point in time as POSIX time. Seconds precision is
// what the block header guarantees, so nanoseconds are dropped.
type UnixTime int64

// AsUnixTime converts given Time structure into its UNIX time representation.
func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

// Time returns a time.Time structure that represents the same moment in time.
func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0)
}

// Add modifies this UNIX time by given duration. This is compatible with
// time.Time.Add method.
func (t UnixTime) Add(d time.Duration) UnixTime {
	return t + UnixTime(d/time.Second)
}

// AddSeconds returns this time moved forward by given number of seconds.
// The result saturates at the maximum representable time instead of
// overflowing, so that a huge duration means "never" rather than a moment
// in the past.
func (t UnixTime) AddSeconds(seconds int64) UnixTime {
	if seconds > 0 && int64(t) > math.MaxInt64-seconds {
		return UnixTime(math.MaxInt64)
	}
	if seconds < 0 && int64(t) < math.MinInt64-seconds {
		return UnixTime(math.MinInt64)
	}
	return t + UnixTime(seconds)
}

// UnmarshalJSON supports unmarshaling both as time.Time and from a number.
// Usually a number is used as a representation of this time in JSON but it
// is convenient to use a string format in the genesis file.
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	var unix int64
	if err := json.Unmarshal(raw, &unix); err == nil {
		if unix < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = UnixTime(unix)
		return nil
	}

	var stdtime time.Time
	if err := json.Unmarshal(raw, &stdtime); err == nil {
		unix := UnixTime(stdtime.Unix())
		if unix < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = unix
		return nil
	}
	return errors.Wrap(errors.ErrInput, "invalid time format")
}

// Validate returns an error if this time value is invalid.
func (t UnixTime) Validate() error {
	if t < 0 {
		return errors.Wrap(errors.ErrState, "negative value")
	}
	return nil
}

// String returns the usual string representation of this time as the
// time.Time structure would.
func (t UnixTime) String() string {
	return t.Time().UTC().String()
}
