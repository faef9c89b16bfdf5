//go:build linux

package platform

import (
	"syscall"
	"time"
)

// CreationTime returns the inode change time, the closest thing to a birth
// time that stat(2) exposes on Linux, or fallback when sys carries none
func CreationTime(sys interface{}, fallback time.Time) time.Time {
	if st, ok := sys.(*syscall.Stat_t); ok {
		return time.Unix(st.Ctim.Unix())
	}
	return fallback
}
