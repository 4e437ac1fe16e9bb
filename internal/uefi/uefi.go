// Package uefi manages bootloader files on a mounted EFI system partition.
package uefi

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/bootmend/bootmend/internal/detect"
	"github.com/bootmend/bootmend/internal/system"
)

// Manager copies and backs up UEFI bootloader files. The EFI system partition
// is always fat16/fat32, so path case does not matter to the firmware.
type Manager struct {
	Run system.Runner
	Log *logrus.Logger

	// Exists and IsDir are injectable for tests; nil falls back to os.Stat.
	Exists func(path string) bool
	IsDir  func(path string) bool
}

func (m *Manager) exists(path string) bool {
	if m.Exists != nil {
		return m.Exists(path)
	}
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

func (m *Manager) isDir(path string) bool {
	if m.IsDir != nil {
		return m.IsDir(path)
	}
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// BackupFiles saves copies of the failsafe boot file and Windows's boot files
// under the ESP mounted below mountPoint. Failures are warned about and never
// abort the repair.
func (m *Manager) BackupFiles(mountPoint string) {
	espBoot := mountPoint + "/boot/efi/EFI/boot"
	if m.exists(espBoot + "/bootx64.efi") {
		if m.Run.Run("cp -v "+espBoot+"/bootx64.efi "+espBoot+"/bkpbootx64.efi",
			system.Options{Privileged: true}).ExitCode != 0 {
			m.Log.Warn("failed to back up the failsafe UEFI boot file; continuing")
		}
	}

	microsoft := mountPoint + "/boot/efi/EFI/Microsoft/boot"
	if m.exists(microsoft + "/bootmgfw.efi") {
		if m.Run.Run("cp -v "+microsoft+"/bootmgfw.efi "+microsoft+"/bkpbootmgfw.efi",
			system.Options{Privileged: true}).ExitCode != 0 {
			m.Log.Warn("failed to back up Windows's UEFI boot files; continuing")
		}
	}
}

// InstallBootloaderFiles copies the OS's GRUB EFI binary into the failsafe
// EFI/boot directory so firmware that ignores boot entries still finds a
// loader.
func (m *Manager) InstallBootloaderFiles(record *detect.OSRecord, mountPoint string) error {
	var sourceDir string
	switch record.PackageManager {
	case detect.PackageManagerAPT:
		sourceDir = mountPoint + "/boot/efi/EFI/ubuntu"
	case detect.PackageManagerDNF:
		sourceDir = mountPoint + "/boot/efi/EFI/fedora"
	default:
		return fmt.Errorf("no known UEFI source directory for package manager %q", record.PackageManager)
	}

	bootDir := mountPoint + "/boot/efi/EFI/boot"
	if !m.isDir(bootDir) {
		if m.Run.Run("mkdir "+bootDir, system.Options{Privileged: true}).ExitCode != 0 {
			return fmt.Errorf("creating %s failed", bootDir)
		}
	}

	m.Log.WithFields(logrus.Fields{"os": record.Name, "source": sourceDir}).Info("installing UEFI bootloader files")
	if m.Run.Run("cp -v "+sourceDir+"/grubx64.efi "+bootDir+"/bootx64.efi",
		system.Options{Privileged: true}).ExitCode != 0 {
		return fmt.Errorf("copying %s/grubx64.efi to %s/bootx64.efi failed", sourceDir, bootDir)
	}
	return nil
}
