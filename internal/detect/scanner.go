package detect

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/bootmend/bootmend/internal/inventory"
	"github.com/bootmend/bootmend/internal/system"
)

// DefaultMountRoot is the base directory for temporary mount points created
// while probing unmounted partitions.
const DefaultMountRoot = "/mnt/bootmend/mountpoints"

// Scanner walks the inventory and detects installed operating systems. It is
// the only writer of the OS table during a scan; the matcher and safety gate
// are read-only consumers afterwards.
type Scanner struct {
	Inv    inventory.Map
	Run    system.Runner
	Mnt    system.Mounter
	Prompt system.Prompter
	Log    *logrus.Logger

	// MountRoot is where temporary mount points live; the partition's device
	// path is appended to it.
	MountRoot string

	// IsLiveDisk marks a system booted from removable/live media.
	IsLiveDisk bool

	// Filesystem and probe hooks, injectable for tests. Nil values fall back
	// to the real implementations.
	Exists    func(path string) bool
	IsDir     func(path string) bool
	ReadFile  func(path string) ([]byte, error)
	ArchOf    func(mountPoint string) string
	ReleaseOf func(partition, mountPoint string, isCurrent bool) string
}

// NewScanner builds a Scanner with the real probe implementations.
func NewScanner(inv inventory.Map, run system.Runner, mnt system.Mounter, prompt system.Prompter, log *logrus.Logger) *Scanner {
	s := &Scanner{
		Inv:        inv,
		Run:        run,
		Mnt:        mnt,
		Prompt:     prompt,
		Log:        log,
		MountRoot:  DefaultMountRoot,
		IsLiveDisk: system.LiveMediaBoot(),
	}
	return s
}

func (s *Scanner) exists(path string) bool {
	if s.Exists != nil {
		return s.Exists(path)
	}
	_, err := os.Stat(path)
	return err == nil
}

func (s *Scanner) isDir(path string) bool {
	if s.IsDir != nil {
		return s.IsDir(path)
	}
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func (s *Scanner) readFile(path string) ([]byte, error) {
	if s.ReadFile != nil {
		return s.ReadFile(path)
	}
	return os.ReadFile(path)
}

func (s *Scanner) archOf(mountPoint string) string {
	if s.ArchOf != nil {
		return s.ArchOf(mountPoint)
	}
	return s.detectArchitecture(mountPoint)
}

func (s *Scanner) releaseOf(partition, mountPoint string, isCurrent bool) string {
	if s.ReleaseOf != nil {
		return s.ReleaseOf(partition, mountPoint, isCurrent)
	}
	return s.detectReleaseMetadata(partition, mountPoint, isCurrent)
}

func isMacFilesystem(fs string) bool {
	return fs == "hfsplus" || fs == "hfs" || fs == "apfs"
}

func isWindowsFilesystem(fs string) bool {
	return fs == "vfat" || fs == "ntfs" || fs == "exfat"
}

// DetectOperatingSystems scans every inventory entry in sorted order and
// returns the detected OS table plus the scan's SystemInfo. It returns
// ErrNoOperatingSystems when nothing is found.
func (s *Scanner) DetectOperatingSystems() (map[string]OSRecord, *SystemInfo, error) {
	oses := make(map[string]OSRecord)
	info := &SystemInfo{IsLiveDisk: s.IsLiveDisk}
	rootFS := s.Mnt.PartitionMountedAt("/")

	for _, partition := range s.Inv.SortedKeys() {
		entry := s.Inv[partition]
		if entry.Kind == inventory.KindDevice {
			continue
		}

		switch {
		case isMacFilesystem(entry.FileSystem):
			s.detectMac(partition, oses)
		case isWindowsFilesystem(entry.FileSystem):
			s.detectWindows(partition, oses)
		default:
			s.detectLinux(partition, entry, rootFS, oses, info)
		}
	}

	if len(oses) == 0 {
		return nil, nil, ErrNoOperatingSystems
	}
	return oses, info, nil
}

// withMounted runs fn with partition mounted and restores the prior mount
// state afterwards on every path. It returns false when the partition could
// not be mounted. An unmount failure is logged and skipped; it never aborts
// the rest of the scan.
func (s *Scanner) withMounted(partition string, fn func(mountPoint string)) bool {
	if s.Mnt.IsMounted(partition) {
		fn(s.Mnt.MountPointOf(partition))
		return true
	}

	mountPoint := s.mountRoot() + partition
	if s.Mnt.Mount(partition, mountPoint) != 0 {
		s.Log.WithField("partition", partition).Warn("could not mount partition for probing; skipping it")
		return false
	}

	fn(mountPoint)

	if s.Mnt.Unmount(mountPoint) != 0 {
		s.Log.WithField("partition", partition).Warn("failed to unmount after probing; leaving the mount in place")
		return true
	}
	// Temporary mount point is no longer needed.
	os.Remove(mountPoint)
	return true
}

func (s *Scanner) mountRoot() string {
	if s.MountRoot != "" {
		return s.MountRoot
	}
	return DefaultMountRoot
}

// detectMac probes a hfs/hfsplus/apfs partition for a macOS kernel.
func (s *Scanner) detectMac(partition string, oses map[string]OSRecord) {
	name := "Mac OS X (" + partition + ")"

	s.withMounted(partition, func(mountPoint string) {
		if !s.exists(mountPoint+"/mach_kernel") && !s.exists(mountPoint+"/System/Library/Kernels/kernel") {
			s.Log.WithField("partition", partition).Debug("no macOS kernel found")
			return
		}

		s.Log.WithField("partition", partition).Info("found macOS installation")
		oses[name] = OSRecord{
			Name:           name,
			IsCurrentOS:    false,
			Arch:           inventory.Unknown,
			Partition:      partition,
			PackageManager: PackageManagerMac,
			RawFSTabInfo:   []string{inventory.Unknown},
			EFIPartition:   inventory.Unknown,
			BootPartition:  inventory.Unknown,
		}
	})
}

// detectWindows probes a vfat/ntfs/exfat partition for a Windows marker
// directory and classifies the edition.
func (s *Scanner) detectWindows(partition string, oses map[string]OSRecord) {
	s.withMounted(partition, func(mountPoint string) {
		if !s.isDir(mountPoint+"/WinNT") && !s.isDir(mountPoint+"/Windows") && !s.isDir(mountPoint+"/WINDOWS") {
			s.Log.WithField("partition", partition).Debug("no Windows marker directory found")
			return
		}

		label := s.windowsEdition(mountPoint)
		name := label + " (" + partition + ")"

		s.Log.WithFields(logrus.Fields{"partition": partition, "edition": label}).Info("found Windows installation")
		oses[name] = OSRecord{
			Name:           name,
			IsCurrentOS:    false,
			Arch:           inventory.Unknown,
			Partition:      partition,
			PackageManager: PackageManagerWindows,
			RawFSTabInfo:   []string{inventory.Unknown},
			EFIPartition:   inventory.Unknown,
			BootPartition:  inventory.Unknown,
		}
	})
}

// detectLinux probes everything that is not a mac or Windows filesystem. The
// live root filesystem is probed directly; anything else is mounted and every
// detection command runs under chroot.
func (s *Scanner) detectLinux(partition string, entry *inventory.DiskEntry, rootFS string, oses map[string]OSRecord, info *SystemInfo) {
	isCurrent := partition == rootFS || entry.HasAlias(rootFS)

	mountPoint := ""
	if !isCurrent {
		mountPoint = s.mountRoot() + partition
		if s.Mnt.Mount(partition, mountPoint) != 0 {
			s.Log.WithField("partition", partition).Warn("could not mount partition for probing; skipping it")
			return
		}
		defer func() {
			if s.Mnt.Unmount(mountPoint) != 0 {
				s.Log.WithField("partition", partition).Warn("failed to unmount after probing; leaving the mount in place")
				return
			}
			os.Remove(mountPoint)
		}()
	}

	res := s.Run.Run(system.Chroot(mountPoint, distroProbeCommand), system.Options{CaptureOutput: true})
	name := collapseWhitespace(res.Output)
	arch := s.archOf(mountPoint)

	// An architecture without a name still means an OS is here: fall back to
	// release metadata and finally to the operator. No architecture means no
	// OS on this partition.
	if (res.ExitCode != 0 || name == "") && arch != "" {
		name = s.releaseOf(partition, mountPoint, isCurrent)
		if name == "" && s.Prompt != nil {
			name, _ = s.Prompt.AskText("An operating system was found on " + partition + " but its name could not be determined. Enter a name for it")
		}
	}

	packageManager := s.packageManagerOf(mountPoint)

	if name == "" || arch == "" || packageManager == PackageManagerUnknown {
		s.Log.WithFields(logrus.Fields{
			"partition":       partition,
			"name":            name,
			"arch":            arch,
			"package_manager": packageManager,
		}).Debug("incomplete detection; dropping candidate")
		return
	}

	key := name
	if _, taken := oses[key]; taken {
		key = name + " (" + partition + ")"
	}

	raw, efi, boot := s.fstabInfo(mountPoint)
	record := OSRecord{
		Name:           key,
		IsCurrentOS:    isCurrent,
		Arch:           arch,
		Partition:      partition,
		PackageManager: packageManager,
		RawFSTabInfo:   raw,
		EFIPartition:   efi,
		BootPartition:  boot,
	}
	oses[key] = record

	s.Log.WithFields(logrus.Fields{"partition": partition, "name": key, "current": isCurrent}).Info("found Linux installation")

	if isCurrent {
		snapshot := record
		info.CurrentOS = &snapshot
	}
}
