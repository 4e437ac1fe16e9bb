// Package depends verifies that the external utilities the repair engine
// shells out to are present before any operation starts.
package depends

import (
	"fmt"
	"strings"

	"github.com/bootmend/bootmend/internal/system"
)

// RequiredTools are the utilities consumed across detection, checking and
// repair.
var RequiredTools = []string{
	"cp", "mv", "which", "uname", "fsck", "ls", "modprobe", "mount", "umount",
	"rm", "ping", "badblocks", "arch", "file", "sh", "echo", "lshw",
	"lvdisplay", "dmidecode", "chroot", "strings", "dd", "blkid",
}

// Missing probes every required tool with which and returns those not found.
func Missing(run system.Runner) []string {
	var missing []string
	for _, tool := range RequiredTools {
		if run.Run("which "+tool, system.Options{}).ExitCode != 0 {
			missing = append(missing, tool)
		}
	}
	return missing
}

// Check returns a terminal error naming every missing dependency, or nil when
// the system has everything.
func Check(run system.Runner) error {
	missing := Missing(run)
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("the following dependencies could not be found on your system: %s; please install them",
		strings.Join(missing, ", "))
}
