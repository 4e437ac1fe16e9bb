package detect

import (
	"strings"

	"github.com/bootmend/bootmend/internal/inventory"
)

// fstabInfo reads the fstab of the installation under mountPoint (empty for
// the running system) and resolves its boot and EFI partitions. The raw lines
// are kept verbatim for later reporting.
func (s *Scanner) fstabInfo(mountPoint string) (raw []string, efi, boot string) {
	efi = inventory.Unknown
	boot = inventory.Unknown

	data, err := s.readFile(mountPoint + "/etc/fstab")
	if err != nil {
		return []string{inventory.Unknown}, efi, boot
	}

	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		raw = append(raw, line)

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) < 2 {
			continue
		}

		switch fields[1] {
		case "/boot/efi":
			efi = s.resolveDeviceSpec(fields[0])
		case "/boot":
			boot = s.resolveDeviceSpec(fields[0])
		}
	}

	if raw == nil {
		raw = []string{inventory.Unknown}
	}
	return raw, efi, boot
}

// resolveDeviceSpec turns an fstab device spec into a device path using the
// inventory's UUID table. Specs that cannot be resolved come back Unknown so
// they are never compared against real partitions.
func (s *Scanner) resolveDeviceSpec(spec string) string {
	switch {
	case strings.HasPrefix(spec, "UUID="):
		return s.Inv.DeviceByUUID(strings.TrimPrefix(spec, "UUID="))
	case strings.HasPrefix(spec, "/dev/disk/by-uuid/"):
		return s.Inv.DeviceByUUID(strings.TrimPrefix(spec, "/dev/disk/by-uuid/"))
	case strings.HasPrefix(spec, "/dev/"):
		return spec
	}
	// LABEL= and other spec styles carry no identity we track.
	return inventory.Unknown
}
