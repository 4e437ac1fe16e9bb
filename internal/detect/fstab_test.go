package detect

import (
	"errors"
	"reflect"
	"testing"

	"github.com/bootmend/bootmend/internal/inventory"
	"github.com/bootmend/bootmend/internal/system/systemtest"
)

func TestFstabInfo(t *testing.T) {
	inv := inventory.Map{
		"/dev/sda1": {Kind: inventory.KindPartition, FileSystem: "ext4", UUID: "root-uuid"},
		"/dev/sda2": {Kind: inventory.KindPartition, FileSystem: "ext2", UUID: "boot-uuid"},
		"/dev/sda3": {Kind: inventory.KindPartition, FileSystem: "vfat", UUID: "efi-uuid"},
	}

	tests := []struct {
		name     string
		fstab    string
		wantEFI  string
		wantBoot string
	}{
		{
			name:     "uuid specs resolve through the inventory",
			fstab:    "UUID=root-uuid / ext4 errors=remount-ro 0 1\nUUID=boot-uuid /boot ext2 defaults 0 2\nUUID=efi-uuid /boot/efi vfat umask=0077 0 1\n",
			wantEFI:  "/dev/sda3",
			wantBoot: "/dev/sda2",
		},
		{
			name:     "by-uuid symlink specs resolve too",
			fstab:    "/dev/disk/by-uuid/boot-uuid /boot ext2 defaults 0 2\n",
			wantEFI:  inventory.Unknown,
			wantBoot: "/dev/sda2",
		},
		{
			name:     "plain device specs pass through",
			fstab:    "/dev/sda2 /boot ext2 defaults 0 2\n",
			wantEFI:  inventory.Unknown,
			wantBoot: "/dev/sda2",
		},
		{
			name:     "label specs carry no identity",
			fstab:    "LABEL=BOOT /boot ext2 defaults 0 2\n",
			wantEFI:  inventory.Unknown,
			wantBoot: inventory.Unknown,
		},
		{
			name:     "comments and blanks are skipped",
			fstab:    "# static filesystems\n\nUUID=boot-uuid /boot ext2 defaults 0 2\n",
			wantEFI:  inventory.Unknown,
			wantBoot: "/dev/sda2",
		},
		{
			name:     "unresolvable uuid comes back unknown",
			fstab:    "UUID=not-in-inventory /boot ext2 defaults 0 2\n",
			wantEFI:  inventory.Unknown,
			wantBoot: inventory.Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Scanner{
				Inv: inv,
				Log: systemtest.Logger(),
				ReadFile: func(path string) ([]byte, error) {
					if path != "/mnt/target/etc/fstab" {
						t.Fatalf("unexpected read of %q", path)
					}
					return []byte(tt.fstab), nil
				},
			}
			raw, efi, boot := s.fstabInfo("/mnt/target")
			if efi != tt.wantEFI || boot != tt.wantBoot {
				t.Errorf("fstabInfo() efi=%q boot=%q, want %q %q", efi, boot, tt.wantEFI, tt.wantBoot)
			}
			if len(raw) == 0 {
				t.Error("raw fstab lines must be preserved")
			}
		})
	}
}

func TestFstabInfoMissingFile(t *testing.T) {
	s := &Scanner{
		Inv:      inventory.Map{},
		Log:      systemtest.Logger(),
		ReadFile: func(string) ([]byte, error) { return nil, errors.New("no such file") },
	}
	raw, efi, boot := s.fstabInfo("/mnt/target")
	if !reflect.DeepEqual(raw, []string{inventory.Unknown}) {
		t.Errorf("raw = %v, want the Unknown placeholder", raw)
	}
	if efi != inventory.Unknown || boot != inventory.Unknown {
		t.Errorf("efi=%q boot=%q, want Unknown", efi, boot)
	}
}
