package detect

import (
	"testing"

	"github.com/bootmend/bootmend/internal/inventory"
)

func TestPartitionMatchesOS(t *testing.T) {
	inv := inventory.Map{
		"/dev/sda1": {Kind: inventory.KindPartition, FileSystem: "ext4", UUID: "root-uuid"},
		"/dev/sda2": {Kind: inventory.KindPartition, FileSystem: "ext2", UUID: "boot-uuid"},
		"/dev/sda3": {Kind: inventory.KindPartition, FileSystem: "vfat", UUID: inventory.Unknown},
	}
	linux := &OSRecord{
		Name:          "Ubuntu 22.04",
		Partition:     "/dev/sda1",
		BootPartition: "/dev/sda2",
		EFIPartition:  "/dev/sda3",
	}
	windows := &OSRecord{
		Name:          "Windows 10 (/dev/sdb1)",
		Partition:     "/dev/sdb1",
		BootPartition: inventory.Unknown,
		EFIPartition:  inventory.Unknown,
	}
	unresolved := &OSRecord{
		Name:          "Mystery",
		Partition:     inventory.Unknown,
		BootPartition: inventory.Unknown,
		EFIPartition:  inventory.Unknown,
	}

	tests := []struct {
		name      string
		partition string
		record    *OSRecord
		want      bool
	}{
		{"nil record", "/dev/sda1", nil, false},
		{"empty partition", "", linux, false},
		{"unknown partition never matches", inventory.Unknown, unresolved, false},
		{"fully unresolved record never matches", "/dev/sda1", unresolved, false},
		{"root partition by path", "/dev/sda1", linux, true},
		{"root partition by uuid", "root-uuid", linux, true},
		{"boot partition by path", "/dev/sda2", linux, true},
		{"boot partition by uuid", "boot-uuid", linux, true},
		{"efi partition by path", "/dev/sda3", linux, true},
		{"unrelated partition", "/dev/sdz9", linux, false},
		{"windows root", "/dev/sdb1", windows, true},
		{"windows unrelated", "/dev/sda1", windows, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PartitionMatchesOS(tt.partition, tt.record, inv); got != tt.want {
				t.Errorf("PartitionMatchesOS(%q, %s) = %v, want %v", tt.partition, tt.name, got, tt.want)
			}
		})
	}
}
