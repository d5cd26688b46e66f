// Package reproducible deals with SOURCE_DATE_EPOCH.
//
// https://reproducible-builds.org/specs/source-date-epoch/
package reproducible

import (
	"os"
	"strconv"
	"time"
)

const EnvVar = "SOURCE_DATE_EPOCH"

// SourceDateEpoch returns the time from $SOURCE_DATE_EPOCH if it is set and valid, and fallback
// otherwise.
func SourceDateEpoch(fallback time.Time) time.Time {
	secs, err := strconv.ParseInt(os.Getenv(EnvVar), 10, 64)
	if err != nil {
		return fallback
	}
	return time.Unix(secs, 0)
}

// Env formats t as a "SOURCE_DATE_EPOCH=..." environment entry.
func Env(t time.Time) string {
	return EnvVar + "=" + strconv.FormatInt(t.Unix(), 10)
}
