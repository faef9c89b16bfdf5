//go:build darwin

package platform

import (
	"syscall"
	"time"
)

// CreationTime returns the birth time recorded in sys, or fallback when sys
// carries none
func CreationTime(sys interface{}, fallback time.Time) time.Time {
	if st, ok := sys.(*syscall.Stat_t); ok {
		return time.Unix(st.Birthtimespec.Unix())
	}
	return fallback
}
