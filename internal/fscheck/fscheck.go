// Package fscheck runs filesystem consistency checks over the partitions the
// safety gate approved.
package fscheck

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/bootmend/bootmend/internal/detect"
	"github.com/bootmend/bootmend/internal/inventory"
	"github.com/bootmend/bootmend/internal/safety"
	"github.com/bootmend/bootmend/internal/system"
)

// Mode selects between a quick consistency check and a thorough check that
// also scans for bad sectors.
type Mode string

const (
	ModeQuick    Mode = "quick"
	ModeThorough Mode = "thorough"
)

// checkerCommand describes how to check one filesystem kind.
type checkerCommand struct {
	quick    string
	thorough string
	// badblocks marks filesystems whose checker cannot scan for bad sectors
	// itself; thorough mode runs badblocks separately for those.
	badblocks bool
}

var checkerCommands = map[string]checkerCommand{
	"jfs":      {quick: "fsck.jfs -vf", thorough: "fsck.jfs -vf", badblocks: true},
	"minix":    {quick: "fsck.minix -avf", thorough: "fsck.minix -avf", badblocks: true},
	"reiserfs": {quick: "fsck.reiserfs -apf", thorough: "fsck.reiserfs -apf", badblocks: true},
	"xfs":      {quick: "xfs_repair -Pvd", thorough: "xfs_repair -Pvd", badblocks: true},
	"hfs":      {quick: "fsck.hfsplus -fy", thorough: "fsck.hfsplus -fy", badblocks: true},
	"hfsplus":  {quick: "fsck.hfsplus -fy", thorough: "fsck.hfsplus -fy", badblocks: true},
	"vfat":     {quick: "fsck.vfat -yv", thorough: "fsck.vfat -yvt"},
	"ext2":     {quick: "fsck.ext2 -yvf", thorough: "fsck.ext2 -yvcf"},
	"ext3":     {quick: "fsck.ext3 -yvf", thorough: "fsck.ext3 -yvcf"},
	"ext4":     {quick: "fsck.ext4 -yvf", thorough: "fsck.ext4 -yvcf"},
	"ext4dev":  {quick: "fsck.ext4dev -yvf", thorough: "fsck.ext4dev -yvcf"},
}

// commandFor returns the check invocation for device, plus whether a separate
// badblocks pass is needed. ok is false for unsupported filesystems.
func commandFor(fs, device string, mode Mode) (command string, badblocks bool, ok bool) {
	entry, ok := checkerCommands[fs]
	if !ok {
		return "", false, false
	}
	command = entry.quick
	if mode == ModeThorough {
		command = entry.thorough
	}
	return command + " " + device, mode == ModeThorough && entry.badblocks, true
}

// Checker executes filesystem checks and applies the return-code policy.
type Checker struct {
	Run    system.Runner
	Mnt    system.Mounter
	Prompt system.Prompter
	Log    *logrus.Logger

	// BootloaderOpsPlanned gates the offer to disable bootloader operations
	// when a check fails outright.
	BootloaderOpsPlanned bool
}

// Result reports the outcome of checking one partition.
type Result struct {
	Device    string
	Command   string
	ExitCode  int
	Corrected bool
	Skipped   string
}

// CheckAll runs the selected check over every approved target in sorted
// order, remounting partitions the safety gate unmounted.
func (c *Checker) CheckAll(inv inventory.Map, targets map[string]safety.CheckTarget, mode Mode, info *detect.SystemInfo) []Result {
	var results []Result
	for _, device := range inv.SortedKeys() {
		if _, ok := targets[device]; !ok {
			continue
		}
		results = append(results, c.checkOne(device, inv[device], targets[device], mode, info)...)
	}
	return results
}

func (c *Checker) checkOne(device string, entry *inventory.DiskEntry, target safety.CheckTarget, mode Mode, info *detect.SystemInfo) []Result {
	var results []Result

	command, runBadblocks, ok := commandFor(entry.FileSystem, device, mode)
	if !ok {
		c.Log.WithFields(logrus.Fields{"device": device, "filesystem": entry.FileSystem}).Warn("checking this filesystem kind is not supported; skipping")
		results = append(results, Result{Device: device, Skipped: "checking " + entry.FileSystem + " is not supported"})
		return results
	}

	c.Log.WithFields(logrus.Fields{"device": device, "command": command}).Info("checking filesystem")
	res := c.Run.Run(command, system.Options{Privileged: true})
	results = append(results, c.handleReturn(command, res.ExitCode, device, info))

	if runBadblocks {
		badblocks := "badblocks -sv " + device
		c.Log.WithField("device", device).Info("scanning for bad sectors")
		res = c.Run.Run(badblocks, system.Options{Privileged: true})
		results = append(results, c.handleReturn(badblocks, res.ExitCode, device, info))
	}

	if target.Remount {
		if c.Mnt.Mount(device, target.MountPoint) != 0 {
			c.Log.WithField("device", device).Warn("failed to remount after check; a reboot may be needed")
		}
	}

	return results
}

// handleReturn applies the checker return-code policy. fsck exit codes 1-3
// mean errors were found and corrected; anything else is a failure that, when
// bootloader operations are planned, offers to disable them.
func (c *Checker) handleReturn(command string, exitCode int, device string, info *detect.SystemInfo) Result {
	tool := strings.Fields(command)[0]
	result := Result{Device: device, Command: command, ExitCode: exitCode}

	if exitCode == 0 {
		c.Log.WithField("device", device).Info("no errors found")
		return result
	}

	if exitCode >= 1 && exitCode <= 3 && tool != "badblocks" {
		result.Corrected = true
		if tool == "xfs_repair" {
			c.Log.WithField("device", device).Warn("xfs_repair detected filesystem corruption; it should now be fixed")
		} else {
			c.Log.WithFields(logrus.Fields{"device": device, "tool": tool}).Info("checker found and fixed errors")
		}
		return result
	}

	c.Log.WithFields(logrus.Fields{"device": device, "tool": tool, "exit_code": exitCode}).Error("filesystem check failed; this could indicate corruption or bad sectors")

	if c.BootloaderOpsPlanned && c.Prompt != nil {
		message := fmt.Sprintf("The filesystem checker gave exit code %d on %s. "+
			"Performing bootloader operations on this partition could leave the system unbootable. "+
			"Disable bootloader operations, as is strongly recommended?", exitCode, device)
		if c.Prompt.AskYesNo(message) {
			info.DisableBootloaderOps("Filesystem corruption was detected on " + device)
		} else {
			c.Log.Warn("operator chose to continue with bootloader operations despite possible filesystem damage")
		}
	}

	return result
}
