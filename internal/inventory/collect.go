package inventory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/bootmend/bootmend/internal/cache"
	"github.com/bootmend/bootmend/internal/system"
)

// Collector builds the disk/partition inventory from lsblk, blkid and lvs.
type Collector struct {
	Run system.Runner
	Log *logrus.Logger
}

// Collect gathers the inventory. Results are memoized briefly so repeated
// lookups within one command invocation do not shell out again.
func (c *Collector) Collect() (Map, error) {
	cacheKey := "inventory:map"
	if cached := cache.Global().Get(cacheKey); cached != nil {
		return cached.(Map), nil
	}

	inv := make(Map)
	if err := c.collectLsblk(inv); err != nil {
		return nil, err
	}
	c.collectBlkid(inv)
	c.collectLVM(inv)

	cache.Global().SetFast(cacheKey, inv)
	return inv, nil
}

type lsblkDevice struct {
	Path     string        `json:"path"`
	Type     string        `json:"type"`
	Size     int64         `json:"size"`
	FSType   *string       `json:"fstype"`
	UUID     *string       `json:"uuid"`
	Children []lsblkDevice `json:"children"`
}

// collectLsblk parses lsblk JSON output into inventory rows.
func (c *Collector) collectLsblk(inv Map) error {
	res := c.Run.Run("lsblk -b -J -o PATH,TYPE,SIZE,FSTYPE,UUID", system.Options{CaptureOutput: true})
	if res.ExitCode != 0 {
		return fmt.Errorf("lsblk failed with exit code %d", res.ExitCode)
	}

	var result struct {
		Blockdevices []lsblkDevice `json:"blockdevices"`
	}
	if err := json.Unmarshal([]byte(res.Output), &result); err != nil {
		return fmt.Errorf("parsing lsblk output: %w", err)
	}

	var walk func(devices []lsblkDevice)
	walk = func(devices []lsblkDevice) {
		for _, bd := range devices {
			if entry := entryFromLsblk(bd); entry != nil {
				inv[bd.Path] = entry
			}
			walk(bd.Children)
		}
	}
	walk(result.Blockdevices)

	c.Log.WithField("entries", len(inv)).Debug("collected block device inventory")
	return nil
}

func entryFromLsblk(bd lsblkDevice) *DiskEntry {
	var kind Kind
	switch bd.Type {
	case "disk":
		kind = KindDevice
	case "part", "lvm", "crypt", "md", "raid1", "raid5":
		kind = KindPartition
	default:
		// loop devices, roms and the like are not repair targets
		return nil
	}

	entry := &DiskEntry{
		Kind:       kind,
		FileSystem: Unknown,
		UUID:       Unknown,
		SizeBytes:  bd.Size,
	}
	if kind == KindDevice {
		entry.FileSystem = NotApplicable
	}

	if bd.FSType != nil && strings.TrimSpace(*bd.FSType) != "" {
		entry.FileSystem = strings.TrimSpace(*bd.FSType)
	}
	if bd.UUID != nil && strings.TrimSpace(*bd.UUID) != "" {
		entry.UUID = strings.TrimSpace(*bd.UUID)
	}
	return entry
}

// collectBlkid fills in UUIDs and filesystem types lsblk did not report.
// blkid output is in export format: KEY=VALUE blocks separated by blank lines.
func (c *Collector) collectBlkid(inv Map) {
	res := c.Run.Run("blkid -o export", system.Options{Privileged: true, CaptureOutput: true})
	if res.ExitCode != 0 {
		return
	}

	device := ""
	apply := func(key, val string) {
		entry, ok := inv[device]
		if !ok {
			return
		}
		switch key {
		case "UUID":
			if entry.UUID == Unknown {
				entry.UUID = val
			}
		case "TYPE":
			if entry.FileSystem == Unknown {
				entry.FileSystem = val
			}
		}
	}

	for _, line := range strings.Split(res.Output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			device = ""
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		if parts[0] == "DEVNAME" {
			device = parts[1]
			continue
		}
		if device != "" {
			apply(parts[0], parts[1])
		}
	}
}

// collectLVM marks logical volumes with their alias device paths. The same
// storage is reachable as /dev/<vg>/<lv>, /dev/mapper/<vg>-<lv> and the dm
// node, and safety decisions must treat those as one partition.
func (c *Collector) collectLVM(inv Map) {
	// The separator must stay quoted; the runner hands the command to a
	// shell, and a bare | would be parsed as a pipe.
	res := c.Run.Run("lvs --noheadings -o lv_path,lv_dm_path --separator '|'",
		system.Options{Privileged: true, CaptureOutput: true})
	if res.ExitCode != 0 {
		return
	}

	for _, line := range strings.Split(res.Output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) < 2 {
			continue
		}
		lvPath := strings.TrimSpace(parts[0])
		dmPath := strings.TrimSpace(parts[1])

		aliases := []string{lvPath, dmPath}
		for _, path := range aliases {
			if entry, ok := inv[path]; ok {
				entry.Product = ProductLVM
				entry.Aliases = aliases
			}
		}
	}
}
