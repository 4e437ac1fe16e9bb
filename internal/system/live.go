package system

import (
	"os"
	"strings"
)

// LiveMediaBoot reports whether the running system was booted from removable
// or live media. Checking a root filesystem is only safe in that case.
func LiveMediaBoot() bool {
	data, err := os.ReadFile("/proc/cmdline")
	if err != nil {
		return false
	}
	return liveMediaCmdline(string(data))
}

func liveMediaCmdline(cmdline string) bool {
	for _, field := range strings.Fields(cmdline) {
		switch field {
		case "boot=casper", "boot=live", "rd.live.image":
			return true
		}
	}
	return false
}
