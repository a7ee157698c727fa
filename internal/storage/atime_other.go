//go:build !linux

package storage

import (
	"os"
	"time"
)

// atime falls back to the modification time on platforms where stat does not
// expose access time in a portable way.
func atime(info os.FileInfo) time.Time {
	return info.ModTime()
}
