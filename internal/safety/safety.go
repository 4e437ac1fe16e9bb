// Package safety decides which filesystems are safe to check or modify, and
// records a reason for every partition it refuses to touch.
package safety

import (
	"github.com/sirupsen/logrus"

	"github.com/bootmend/bootmend/internal/cache"
	"github.com/bootmend/bootmend/internal/detect"
	"github.com/bootmend/bootmend/internal/inventory"
	"github.com/bootmend/bootmend/internal/system"
)

// Skip reasons reported to the operator.
const (
	ReasonCheckerMissing = "filesystem checker was not found."
	ReasonDiskBusy       = "disk is busy."
	ReasonUnknownFS      = "filesystem was not recognised."
)

// CheckTarget describes a partition approved for checking.
type CheckTarget struct {
	// MountPoint is the prior mount point when Remount is set, so it can be
	// restored after the check.
	MountPoint string
	Remount    bool
}

// Skip records why a partition was not approved.
type Skip struct {
	Device string
	Reason string
}

func (s Skip) String() string {
	return s.Device + ", because the " + s.Reason
}

// Classifier applies the safety rules over an inventory.
type Classifier struct {
	Run system.Runner
	Mnt system.Mounter
	Log *logrus.Logger
}

// FindMissingCheckers returns the fsck helpers absent from the system, one
// per filesystem kind present in the inventory. Filesystems whose checker is
// missing are later skipped rather than failed.
func (c *Classifier) FindMissingCheckers(inv inventory.Map) []string {
	var missing []string
	seen := make(map[string]bool)

	for _, disk := range inv.SortedKeys() {
		fs := inv[disk].FileSystem
		if fs == inventory.Unknown || fs == inventory.NotApplicable {
			continue
		}
		checker := "fsck." + fs
		if seen[checker] {
			continue
		}
		seen[checker] = true

		if !c.checkerPresent(checker) {
			c.Log.WithField("checker", checker).Warn("filesystem checker not installed")
			missing = append(missing, checker)
		}
	}
	return missing
}

// checkerPresent probes for a fsck helper. Tool availability barely changes,
// so results are cached on the slow tier instead of shelling out per call.
func (c *Classifier) checkerPresent(checker string) bool {
	key := "tool:" + checker
	if cached := cache.Global().Get(key); cached != nil {
		return cached.(bool)
	}
	present := c.Run.Run("which "+checker, system.Options{}).ExitCode == 0
	cache.Global().SetSlow(key, present)
	return present
}

// FindCheckableFilesystems classifies every partition in the inventory. The
// rules run in strict priority order and the first match wins: tool
// availability, live-root protection, LVM alias correctness, filesystem
// recognizability, then live mount-state handling. Partitions that have to be
// unmounted for the check are flagged for remounting afterwards.
func (c *Classifier) FindCheckableFilesystems(inv inventory.Map, info *detect.SystemInfo) (map[string]CheckTarget, []Skip) {
	targets := make(map[string]CheckTarget)
	var skips []Skip

	rootFS := c.Mnt.PartitionMountedAt("/")
	missing := make(map[string]bool)
	for _, checker := range c.FindMissingCheckers(inv) {
		missing[checker] = true
	}

	for _, disk := range inv.SortedKeys() {
		entry := inv[disk]
		if entry.Kind == inventory.KindDevice {
			continue
		}

		target, reason := c.classify(disk, entry, rootFS, missing, info)
		if reason != "" {
			c.Log.WithFields(logrus.Fields{"disk": disk, "reason": reason}).Info("skipping filesystem")
			skips = append(skips, Skip{Device: disk, Reason: reason})
			continue
		}
		targets[disk] = target
	}

	return targets, skips
}

func (c *Classifier) classify(disk string, entry *inventory.DiskEntry, rootFS string, missing map[string]bool, info *detect.SystemInfo) (CheckTarget, string) {
	if missing["fsck."+entry.FileSystem] {
		return CheckTarget{}, ReasonCheckerMissing
	}

	// Never check a mounted, in-use root filesystem.
	if !info.IsLiveDisk && disk == rootFS {
		return CheckTarget{}, ReasonDiskBusy
	}

	// The root filesystem may hide behind an LVM alias path.
	if entry.Product == inventory.ProductLVM && entry.HasAlias(rootFS) {
		return CheckTarget{}, ReasonDiskBusy
	}

	if entry.FileSystem == inventory.Unknown || entry.FileSystem == inventory.NotApplicable {
		return CheckTarget{}, ReasonUnknownFS
	}

	if !c.Mnt.IsMounted(disk) {
		return CheckTarget{}, ""
	}

	// An LVM partition counts as unmounted only when none of its aliases are
	// mounted either.
	if entry.Product == inventory.ProductLVM && !c.Mnt.AnyMounted(entry.Aliases) {
		return CheckTarget{}, ""
	}

	// Unmount temporarily to avoid corrupting a live filesystem; remember the
	// mount point so it can be restored after the check.
	mountPoint := c.Mnt.MountPointOf(disk)
	if c.Mnt.Unmount(disk) != 0 {
		c.Log.WithField("disk", disk).Warn("failed to unmount for checking; ignoring it")
		return CheckTarget{}, ReasonDiskBusy
	}
	return CheckTarget{MountPoint: mountPoint, Remount: true}, ""
}
