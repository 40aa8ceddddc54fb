//go:build linux || darwin || freebsd || netbsd || openbsd

package monitor

import "golang.org/x/sys/unix"

// kernelVersion returns uname's version field, the kernel build string.
func kernelVersion() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return ""
	}
	return unix.ByteSliceToString(u.Version[:])
}
