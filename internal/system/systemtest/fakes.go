// Package systemtest provides scripted fakes for the system interfaces so
// tests can exercise detection and repair logic without shelling out.
package systemtest

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/bootmend/bootmend/internal/system"
)

// Runner replays scripted results keyed by exact command. Unscripted commands
// get Default, which is a zero Result (exit 0, no output).
type Runner struct {
	Results map[string]system.Result
	Default system.Result

	Calls []string
}

func (r *Runner) Run(command string, opt system.Options) system.Result {
	r.Calls = append(r.Calls, command)
	if res, ok := r.Results[command]; ok {
		return res
	}
	return r.Default
}

// Called reports whether command was run.
func (r *Runner) Called(command string) bool {
	for _, c := range r.Calls {
		if c == command {
			return true
		}
	}
	return false
}

// Mounter keeps mount state in a map from device to mount point.
type Mounter struct {
	Mounted map[string]string

	// MountExit and UnmountExit force nonzero exit codes per device.
	MountExit   map[string]int
	UnmountExit map[string]int

	MountCalls   []string
	UnmountCalls []string
}

func NewMounter() *Mounter {
	return &Mounter{Mounted: make(map[string]string)}
}

func (m *Mounter) IsMounted(device string) bool {
	_, ok := m.Mounted[device]
	return ok
}

func (m *Mounter) AnyMounted(devices []string) bool {
	for _, d := range devices {
		if m.IsMounted(d) {
			return true
		}
	}
	return false
}

func (m *Mounter) MountPointOf(device string) string {
	return m.Mounted[device]
}

func (m *Mounter) PartitionMountedAt(mountPoint string) string {
	for device, mp := range m.Mounted {
		if mp == mountPoint {
			return device
		}
	}
	return ""
}

func (m *Mounter) Mount(device, mountPoint string) int {
	m.MountCalls = append(m.MountCalls, device)
	if code := m.MountExit[device]; code != 0 {
		return code
	}
	m.Mounted[device] = mountPoint
	return 0
}

func (m *Mounter) Unmount(deviceOrMountPoint string) int {
	m.UnmountCalls = append(m.UnmountCalls, deviceOrMountPoint)
	if code := m.UnmountExit[deviceOrMountPoint]; code != 0 {
		return code
	}
	if _, ok := m.Mounted[deviceOrMountPoint]; ok {
		delete(m.Mounted, deviceOrMountPoint)
		return 0
	}
	for device, mp := range m.Mounted {
		if mp == deviceOrMountPoint {
			delete(m.Mounted, device)
			return 0
		}
	}
	return 0
}

// Prompter answers yes/no questions from a queue and text questions with a
// fixed response. An exhausted queue answers no.
type Prompter struct {
	YesNoAnswers []bool
	Text         string
	TextOK       bool

	YesNoAsked []string
	TextAsked  []string
}

func (p *Prompter) AskYesNo(message string) bool {
	p.YesNoAsked = append(p.YesNoAsked, message)
	if len(p.YesNoAnswers) == 0 {
		return false
	}
	answer := p.YesNoAnswers[0]
	p.YesNoAnswers = p.YesNoAnswers[1:]
	return answer
}

func (p *Prompter) AskText(message string) (string, bool) {
	p.TextAsked = append(p.TextAsked, message)
	return p.Text, p.TextOK
}

// Logger returns a logger that discards everything.
func Logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
