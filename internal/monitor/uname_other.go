//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package monitor

func kernelVersion() string { return "" }
