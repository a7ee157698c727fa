//go:build linux

package storage

import (
	"os"
	"syscall"
	"time"
)

// atime extracts the last access time from stat data.
func atime(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Atim.Sec, st.Atim.Nsec)
	}
	return info.ModTime()
}
