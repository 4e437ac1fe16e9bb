package system

import (
	"os"
	"strings"
)

// Mounter answers mount-state queries and mounts/unmounts partitions.
// Mount and Unmount return the exit code of the underlying command; zero
// means success.
type Mounter interface {
	IsMounted(device string) bool
	AnyMounted(devices []string) bool
	MountPointOf(device string) string
	PartitionMountedAt(mountPoint string) string
	Mount(device, mountPoint string) int
	Unmount(deviceOrMountPoint string) int
}

// ProcMounter reads mount state from /proc/mounts and shells out for
// mount/umount.
type ProcMounter struct {
	Run Runner

	// MountsPath overrides /proc/mounts, for tests.
	MountsPath string
}

type mountRow struct {
	device     string
	mountPoint string
}

func (m *ProcMounter) mounts() []mountRow {
	path := m.MountsPath
	if path == "" {
		path = "/proc/mounts"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var rows []mountRow
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		rows = append(rows, mountRow{
			device:     fields[0],
			mountPoint: unescapeMountField(fields[1]),
		})
	}
	return rows
}

// unescapeMountField decodes the octal escapes /proc/mounts uses for spaces
// and tabs in mount points.
func unescapeMountField(s string) string {
	replacer := strings.NewReplacer(`\040`, " ", `\011`, "\t", `\012`, "\n", `\134`, `\`)
	return replacer.Replace(s)
}

func (m *ProcMounter) IsMounted(device string) bool {
	for _, row := range m.mounts() {
		if row.device == device {
			return true
		}
	}
	return false
}

func (m *ProcMounter) AnyMounted(devices []string) bool {
	for _, d := range devices {
		if m.IsMounted(d) {
			return true
		}
	}
	return false
}

func (m *ProcMounter) MountPointOf(device string) string {
	for _, row := range m.mounts() {
		if row.device == device {
			return row.mountPoint
		}
	}
	return ""
}

func (m *ProcMounter) PartitionMountedAt(mountPoint string) string {
	for _, row := range m.mounts() {
		if row.mountPoint == mountPoint {
			return row.device
		}
	}
	return ""
}

func (m *ProcMounter) Mount(device, mountPoint string) int {
	if res := m.Run.Run("mkdir -p "+mountPoint, Options{Privileged: true}); res.ExitCode != 0 {
		return res.ExitCode
	}
	return m.Run.Run("mount "+device+" "+mountPoint, Options{Privileged: true}).ExitCode
}

func (m *ProcMounter) Unmount(deviceOrMountPoint string) int {
	return m.Run.Run("umount "+deviceOrMountPoint, Options{Privileged: true}).ExitCode
}
