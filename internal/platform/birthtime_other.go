//go:build !darwin && !linux && !windows

package platform

import "time"

// CreationTime returns fallback; the platform exposes no portable birth time
func CreationTime(sys interface{}, fallback time.Time) time.Time {
	return fallback
}
