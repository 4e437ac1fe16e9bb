package detect

import (
	"github.com/bootmend/bootmend/internal/inventory"
)

// PartitionMatchesOS reports whether partition (a device path or UUID)
// corresponds to the record's root, boot or EFI partition, tried in that
// order. Role fields valued Unknown are never compared, so two Unknowns can
// never produce a false positive. Callers needing the specific role of a
// match must compare the roles individually; the same device path can hold
// more than one role across records.
func PartitionMatchesOS(partition string, record *OSRecord, inv inventory.Map) bool {
	if record == nil || partition == "" || partition == inventory.Unknown {
		return false
	}

	for _, candidate := range []string{record.Partition, record.BootPartition, record.EFIPartition} {
		if candidate == "" || candidate == inventory.Unknown {
			continue
		}
		if partition == candidate {
			return true
		}
		if entry, ok := inv[candidate]; ok && entry.UUID != inventory.Unknown && partition == entry.UUID {
			return true
		}
	}
	return false
}
