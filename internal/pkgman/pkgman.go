// Package pkgman waits for a package manager's lock to become free before
// bootloader packages are touched.
package pkgman

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bootmend/bootmend/internal/detect"
	"github.com/bootmend/bootmend/internal/system"
)

// pollInterval is how long to wait between lock probes. A variable so tests
// can shorten it.
var pollInterval = 5 * time.Second

// WaitUntilFree polls until the installation's package manager is no longer
// busy, or ctx is done. mountPoint is empty for the running system; otherwise
// the probe runs under chroot.
//
// apt-get check exits 100 while the lock is held; dnf -C check-update exits
// 100 when updates are available and 200 on a locking failure. The overlap on
// exit code 100 is an upstream ambiguity these success sets preserve.
func WaitUntilFree(ctx context.Context, run system.Runner, log *logrus.Logger, mountPoint, packageManager string) error {
	var command string
	var success []int

	switch packageManager {
	case detect.PackageManagerAPT:
		command = "apt-get check"
		success = []int{0}
	case detect.PackageManagerDNF:
		command = "dnf -C check-update"
		success = []int{0, 100}
	default:
		return fmt.Errorf("cannot wait for unknown package manager %q", packageManager)
	}

	for {
		res := run.Run(system.Chroot(mountPoint, command), system.Options{Privileged: true})
		if slices.Contains(success, res.ExitCode) {
			return nil
		}

		if packageManager == detect.PackageManagerDNF && res.ExitCode != 200 {
			// Probably no metadata cache yet; fetch one so -C probes can work.
			log.Info("no package cache available, downloading package information")
			run.Run(system.Chroot(mountPoint, "dnf check-update"), system.Options{Privileged: true})
		}

		log.WithFields(logrus.Fields{"package_manager": packageManager, "exit_code": res.ExitCode}).Info("package manager is busy; waiting")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
