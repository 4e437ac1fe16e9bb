package system

import (
	"os/exec"
)

// Options control how an external command is run.
type Options struct {
	// Privileged runs the command under sudo.
	Privileged bool
	// CaptureOutput keeps combined stdout/stderr in the result.
	CaptureOutput bool
}

// Result is the outcome of one external command.
type Result struct {
	ExitCode int
	Output   string
}

// Runner executes shell commands. The engine never shells out directly; every
// external invocation goes through this interface so tests can substitute a
// fake.
type Runner interface {
	Run(command string, opt Options) Result
}

// ExecRunner runs commands through sh, optionally under sudo.
type ExecRunner struct{}

func (ExecRunner) Run(command string, opt Options) Result {
	var cmd *exec.Cmd
	if opt.Privileged {
		cmd = exec.Command("sudo", "sh", "-c", command)
	} else {
		cmd = exec.Command("sh", "-c", command)
	}

	out, err := cmd.CombinedOutput()
	res := Result{}
	if opt.CaptureOutput {
		res.Output = string(out)
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
		}
	}
	return res
}

// Chroot prefixes command so it runs inside mountPoint. An empty mount point
// means the running system and returns the command unchanged.
func Chroot(mountPoint, command string) string {
	if mountPoint == "" {
		return command
	}
	return "chroot " + mountPoint + " " + command
}
