//go:build windows

package platform

import (
	"syscall"
	"time"
)

// CreationTime returns the NTFS creation time recorded in sys, or fallback
// when sys carries none
func CreationTime(sys interface{}, fallback time.Time) time.Time {
	if attrs, ok := sys.(*syscall.Win32FileAttributeData); ok {
		return time.Unix(0, attrs.CreationTime.Nanoseconds())
	}
	return fallback
}
