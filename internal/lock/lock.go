// Package lock keeps two monitors from writing the same report file.
//
// The lock is a directory next to the report, created with mkdir so
// acquisition is atomic. It holds an info.json naming the holder. A lock
// whose holder process has exited on this host is stale and is taken over.
package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/rileyhilliard/livemon/internal/errors"
)

// Suffix is appended to the report path to name the lock directory.
const Suffix = ".lock"

const infoName = "info.json"

// Lock represents an acquired lock on a report file.
type Lock struct {
	Dir  string    // The lock directory path
	Info *LockInfo // Info about the lock holder (us)
}

// PIDAlive reports whether a process is running. Replaced in tests.
var PIDAlive = func(ctx context.Context, pid int) bool {
	alive, err := process.PidExistsWithContext(ctx, int32(pid))
	return err == nil && alive
}

// DirFor returns the lock directory for a report path.
func DirFor(reportPath string) string {
	return reportPath + Suffix
}

// Acquire takes the lock for reportPath or fails with ErrLocked if a live
// process on this host holds it.
func Acquire(ctx context.Context, reportPath, command string) (*Lock, error) {
	dir := DirFor(reportPath)
	info := NewLockInfo(command)

	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Can't create %s", filepath.Dir(dir)),
			"Check the output path and directory permissions")
	}

	for attempt := 0; attempt < 2; attempt++ {
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			if werr := writeInfo(dir, info); werr != nil {
				_ = os.RemoveAll(dir)
				return nil, werr
			}
			return &Lock{Dir: dir, Info: info}, nil
		}
		if !os.IsExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrLock,
				fmt.Sprintf("Can't create lock %s", dir),
				"Check directory permissions")
		}

		holder, stale := inspect(ctx, dir)
		if !stale {
			return nil, errors.WrapWithCode(ErrLocked, errors.ErrLock,
				fmt.Sprintf("Another monitor is writing %s", reportPath),
				fmt.Sprintf("Held by %s. Stop it, pick another --output, or remove %s if it's abandoned.", holder, dir))
		}
		if err := os.RemoveAll(dir); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrLock,
				fmt.Sprintf("Can't remove stale lock %s", dir),
				"Remove it by hand")
		}
	}

	return nil, errors.WrapWithCode(ErrLocked, errors.ErrLock,
		fmt.Sprintf("Another monitor grabbed %s first", reportPath),
		"Try again")
}

// Release removes the lock. It is safe to call on a nil Lock.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.RemoveAll(l.Dir); err != nil {
		return errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Failed to remove lock directory: %s", l.Dir),
			"Remove it by hand")
	}
	return nil
}

// ForceRelease removes the lock on reportPath whoever holds it. It returns
// the previous holder, or "" if there was no lock.
func ForceRelease(reportPath string) (string, error) {
	holder := Holder(reportPath)
	if holder == "" {
		return "", nil
	}
	dir := DirFor(reportPath)
	if err := os.RemoveAll(dir); err != nil {
		return holder, errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Failed to remove lock directory: %s", dir),
			"Remove it by hand")
	}
	return holder, nil
}

// Holder returns a description of who holds the lock on reportPath, or ""
// when it isn't locked.
func Holder(reportPath string) string {
	dir := DirFor(reportPath)
	if _, err := os.Stat(dir); err != nil {
		return ""
	}
	info, err := readInfo(dir)
	if err != nil {
		return "unknown"
	}
	return info.String()
}

func writeInfo(dir string, info *LockInfo) error {
	data, err := info.Marshal()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrLock,
			"Failed to serialize lock info",
			"This shouldn't happen")
	}
	if err := os.WriteFile(filepath.Join(dir, infoName), data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrLock,
			"Failed to write lock info file",
			"Check disk space and permissions")
	}
	return nil
}

func readInfo(dir string) (*LockInfo, error) {
	data, err := os.ReadFile(filepath.Join(dir, infoName))
	if err != nil {
		return nil, err
	}
	return ParseLockInfo(data)
}

// inspect describes the holder and reports whether the lock is stale. A
// lock without readable info is treated as held, since its owner may still
// be writing it.
func inspect(ctx context.Context, dir string) (string, bool) {
	info, err := readInfo(dir)
	if err != nil {
		return "unknown", false
	}

	host, _ := os.Hostname()
	if info.Hostname != host {
		return info.String(), false
	}
	return info.String(), !PIDAlive(ctx, info.PID)
}
