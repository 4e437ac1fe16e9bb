package detect

import (
	"strings"

	"github.com/bootmend/bootmend/internal/system"
)

// distroProbeCommand prints the distribution name and version from
// os-release. Run under chroot for non-root partitions.
const distroProbeCommand = `sh -c '. /etc/os-release && echo "$NAME $VERSION"'`

// collapseWhitespace trims and squeezes command output into a single line.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// detectArchitecture resolves the architecture of the installation under
// mountPoint. The running system answers `arch` directly; other installations
// are identified from their init binary, which works without executing
// foreign binaries.
func (s *Scanner) detectArchitecture(mountPoint string) string {
	if mountPoint == "" {
		res := s.Run.Run("arch", system.Options{CaptureOutput: true})
		if res.ExitCode != 0 {
			return ""
		}
		return collapseWhitespace(res.Output)
	}

	res := s.Run.Run("file -sL "+mountPoint+"/sbin/init", system.Options{CaptureOutput: true})
	if res.ExitCode != 0 {
		return ""
	}
	switch {
	case strings.Contains(res.Output, "x86-64"):
		return "x86_64"
	case strings.Contains(res.Output, "80386"):
		return "i386"
	case strings.Contains(res.Output, "aarch64"):
		return "aarch64"
	case strings.Contains(res.Output, "ARM"):
		return "armv7l"
	}
	return ""
}

// detectReleaseMetadata resolves an OS name from release metadata when the
// distro probe came back empty. It tries lsb_release first and falls back to
// parsing /etc/lsb-release on the mounted filesystem.
func (s *Scanner) detectReleaseMetadata(partition, mountPoint string, isCurrent bool) string {
	res := s.Run.Run(system.Chroot(mountPoint, "lsb_release -sd"), system.Options{CaptureOutput: true})
	if res.ExitCode == 0 {
		if name := strings.Trim(collapseWhitespace(res.Output), `"`); name != "" {
			return name
		}
	}

	data, err := s.readFile(mountPoint + "/etc/lsb-release")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		if value, found := strings.CutPrefix(strings.TrimSpace(line), "DISTRIB_DESCRIPTION="); found {
			return strings.Trim(value, `"`)
		}
	}
	return ""
}

// packageManagerOf probes for apt-get and dnf binaries, in that order.
func (s *Scanner) packageManagerOf(mountPoint string) string {
	if s.Run.Run(system.Chroot(mountPoint, "which apt-get"), system.Options{}).ExitCode == 0 {
		return PackageManagerAPT
	}
	if s.Run.Run(system.Chroot(mountPoint, "which dnf"), system.Options{}).ExitCode == 0 {
		return PackageManagerDNF
	}
	return PackageManagerUnknown
}
