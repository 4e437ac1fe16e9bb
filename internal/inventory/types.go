package inventory

import "sort"

// Sentinel attribute values used throughout the inventory and detection
// tables.
const (
	Unknown       = "Unknown"
	NotApplicable = "N/A"
)

// ProductLVM marks partitions that belong to an LVM volume group. Such
// partitions carry alias device paths that must be considered when deciding
// whether the underlying storage is in use.
const ProductLVM = "LVM Partition"

// Kind distinguishes whole devices from partitions.
type Kind string

const (
	KindDevice    Kind = "Device"
	KindPartition Kind = "Partition"
)

// DiskEntry is one inventory row, keyed by device path in a Map.
type DiskEntry struct {
	Kind       Kind
	FileSystem string
	UUID       string
	Product    string
	Aliases    []string
	SizeBytes  int64
}

// HasAlias reports whether path is one of the entry's alias device paths.
func (e *DiskEntry) HasAlias(path string) bool {
	if path == "" {
		return false
	}
	for _, a := range e.Aliases {
		if a == path {
			return true
		}
	}
	return false
}

// Map is the disk/partition inventory, keyed by device path.
type Map map[string]*DiskEntry

// SortedKeys returns the device paths in sorted order. Detection iterates in
// this order so runs over the same inventory are reproducible.
func (m Map) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UUIDOf returns the UUID recorded for device, or Unknown when the device is
// not in the inventory.
func (m Map) UUIDOf(device string) string {
	if entry, ok := m[device]; ok {
		return entry.UUID
	}
	return Unknown
}

// DeviceByUUID returns the device path whose entry carries the given UUID, or
// Unknown when no entry matches.
func (m Map) DeviceByUUID(uuid string) string {
	if uuid == "" || uuid == Unknown {
		return Unknown
	}
	for _, device := range m.SortedKeys() {
		if m[device].UUID == uuid {
			return device
		}
	}
	return Unknown
}
