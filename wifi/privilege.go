package wifi

import "golang.org/x/sys/unix"

// IsRoot is the default privilege probe.
func IsRoot() bool {
	return unix.Geteuid() == 0
}
