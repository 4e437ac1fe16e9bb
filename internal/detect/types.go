package detect

import "errors"

// ErrNoOperatingSystems is returned when a full scan finds nothing. Callers
// present it as a terminal condition, not a crash.
var ErrNoOperatingSystems = errors.New("no operating systems found on any disk")

// Package manager identifiers stored on OSRecord.
const (
	PackageManagerAPT     = "apt-get"
	PackageManagerDNF     = "dnf"
	PackageManagerMac     = "Mac App Store"
	PackageManagerWindows = "Windows Installer"
	PackageManagerUnknown = "Unknown"
)

// OSRecord describes one detected operating system installation. Records are
// only stored once name, architecture and package manager all resolved; a
// partial detection is dropped, never stored half-populated.
type OSRecord struct {
	Name           string
	IsCurrentOS    bool
	Arch           string
	Partition      string
	PackageManager string
	RawFSTabInfo   []string
	EFIPartition   string
	BootPartition  string
}

// SystemInfo holds per-scan system state. The scan session owns it; the
// repair layer reads DisableBootloaderOperations before acting.
type SystemInfo struct {
	CurrentOS  *OSRecord
	IsLiveDisk bool

	DisableBootloaderOperations        bool
	DisableBootloaderOperationsBecause []string
}

// DisableBootloaderOps records that bootloader operations must not run and
// why. Reasons accumulate across checks.
func (s *SystemInfo) DisableBootloaderOps(reason string) {
	s.DisableBootloaderOperations = true
	s.DisableBootloaderOperationsBecause = append(s.DisableBootloaderOperationsBecause, reason)
}
