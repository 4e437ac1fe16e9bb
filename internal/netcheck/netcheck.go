// Package netcheck gates bootloader work behind a working internet
// connection: a new bootloader cannot be installed without one.
package netcheck

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/bootmend/bootmend/internal/detect"
	"github.com/bootmend/bootmend/internal/system"
)

// DefaultTarget is a well-known anycast DNS resolver.
const DefaultTarget = "208.67.222.222"

// Gate runs the connectivity check before bootloader operations.
type Gate struct {
	Run    system.Runner
	Prompt system.Prompter
	Log    *logrus.Logger

	// Target overrides the host pinged for the test.
	Target string
}

// Check pings the target and retries until the connection is reliable, the
// operator declines, or ctx is done. A decline disables bootloader operations
// on info with a recorded reason.
func (g *Gate) Check(ctx context.Context, info *detect.SystemInfo) {
	target := g.Target
	if target == "" {
		target = DefaultTarget
	}

	for {
		if ctx.Err() != nil {
			return
		}

		g.Log.WithField("target", target).Info("testing the internet connection")
		res := g.Run.Run("ping -c 5 -i 0.5 "+target, system.Options{CaptureOutput: true})

		loss := "100%"
		if res.ExitCode == 0 {
			loss = packetLoss(res.Output)
		}
		if loss == "0%" {
			g.Log.Info("internet connection test succeeded")
			return
		}

		g.Log.WithField("packet_loss", loss).Error("internet connection test failed")
		retry := g.Prompt.AskYesNo("The internet connection failed the test. Without a working " +
			"connection, bootloader operations cannot be performed. Try again? " +
			"(answering no skips bootloader operations)")
		if !retry {
			g.Log.Warn("disabling bootloader operations due to bad internet connection")
			info.DisableBootloaderOps("Internet Connection test failed.")
			return
		}
	}
}

// packetLoss extracts the loss percentage from ping output, defaulting to
// total loss when the summary line is missing.
func packetLoss(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "packet loss") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 5 {
			return fields[len(fields)-5]
		}
	}
	return "100%"
}
