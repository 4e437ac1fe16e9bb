package fscheck

import (
	"strings"
	"testing"

	"github.com/bootmend/bootmend/internal/detect"
	"github.com/bootmend/bootmend/internal/inventory"
	"github.com/bootmend/bootmend/internal/safety"
	"github.com/bootmend/bootmend/internal/system"
	"github.com/bootmend/bootmend/internal/system/systemtest"
)

func TestCommandFor(t *testing.T) {
	tests := []struct {
		fs            string
		mode          Mode
		wantCommand   string
		wantBadblocks bool
		wantOK        bool
	}{
		{"ext4", ModeQuick, "fsck.ext4 -yvf /dev/sda1", false, true},
		{"ext4", ModeThorough, "fsck.ext4 -yvcf /dev/sda1", false, true},
		{"vfat", ModeQuick, "fsck.vfat -yv /dev/sda1", false, true},
		{"vfat", ModeThorough, "fsck.vfat -yvt /dev/sda1", false, true},
		{"xfs", ModeQuick, "xfs_repair -Pvd /dev/sda1", false, true},
		{"xfs", ModeThorough, "xfs_repair -Pvd /dev/sda1", true, true},
		{"jfs", ModeThorough, "fsck.jfs -vf /dev/sda1", true, true},
		{"hfsplus", ModeQuick, "fsck.hfsplus -fy /dev/sda1", false, true},
		{"ntfs", ModeQuick, "", false, false},
		{"btrfs", ModeThorough, "", false, false},
	}
	for _, tt := range tests {
		command, badblocks, ok := commandFor(tt.fs, "/dev/sda1", tt.mode)
		if command != tt.wantCommand || badblocks != tt.wantBadblocks || ok != tt.wantOK {
			t.Errorf("commandFor(%q, %q) = (%q, %v, %v), want (%q, %v, %v)",
				tt.fs, tt.mode, command, badblocks, ok, tt.wantCommand, tt.wantBadblocks, tt.wantOK)
		}
	}
}

func TestHandleReturn(t *testing.T) {
	tests := []struct {
		name          string
		command       string
		exitCode      int
		answer        bool
		wantCorrected bool
		wantDisabled  bool
	}{
		{name: "clean", command: "fsck.ext4 -yvf /dev/sda1", exitCode: 0},
		{name: "errors corrected", command: "fsck.ext4 -yvf /dev/sda1", exitCode: 1, wantCorrected: true},
		{name: "errors corrected upper bound", command: "fsck.ext4 -yvf /dev/sda1", exitCode: 3, wantCorrected: true},
		{name: "xfs repair corrected", command: "xfs_repair -Pvd /dev/sda1", exitCode: 1, wantCorrected: true},
		{name: "badblocks never counts as corrected", command: "badblocks -sv /dev/sda1", exitCode: 1, answer: true, wantDisabled: true},
		{name: "hard failure with operator consent", command: "fsck.ext4 -yvf /dev/sda1", exitCode: 8, answer: true, wantDisabled: true},
		{name: "hard failure operator declines", command: "fsck.ext4 -yvf /dev/sda1", exitCode: 8, answer: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := &systemtest.Prompter{YesNoAnswers: []bool{tt.answer}}
			c := &Checker{
				Run:                  &systemtest.Runner{},
				Mnt:                  systemtest.NewMounter(),
				Prompt:               prompt,
				Log:                  systemtest.Logger(),
				BootloaderOpsPlanned: true,
			}
			info := &detect.SystemInfo{}

			result := c.handleReturn(tt.command, tt.exitCode, "/dev/sda1", info)
			if result.Corrected != tt.wantCorrected {
				t.Errorf("Corrected = %v, want %v", result.Corrected, tt.wantCorrected)
			}
			if info.DisableBootloaderOperations != tt.wantDisabled {
				t.Errorf("DisableBootloaderOperations = %v, want %v", info.DisableBootloaderOperations, tt.wantDisabled)
			}
			if tt.wantDisabled {
				found := false
				for _, reason := range info.DisableBootloaderOperationsBecause {
					if strings.Contains(reason, "/dev/sda1") {
						found = true
					}
				}
				if !found {
					t.Errorf("disable reason should name the device, got %v", info.DisableBootloaderOperationsBecause)
				}
			}
		})
	}
}

func TestHandleReturnNoPromptWhenNoBootloaderOps(t *testing.T) {
	prompt := &systemtest.Prompter{YesNoAnswers: []bool{true}}
	c := &Checker{
		Run:    &systemtest.Runner{},
		Mnt:    systemtest.NewMounter(),
		Prompt: prompt,
		Log:    systemtest.Logger(),
	}
	info := &detect.SystemInfo{}
	c.handleReturn("fsck.ext4 -yvf /dev/sda1", 8, "/dev/sda1", info)
	if len(prompt.YesNoAsked) != 0 {
		t.Error("operator must not be prompted when no bootloader operations are planned")
	}
	if info.DisableBootloaderOperations {
		t.Error("nothing to disable when no bootloader operations are planned")
	}
}

func TestCheckAll(t *testing.T) {
	inv := inventory.Map{
		"/dev/sda1": {Kind: inventory.KindPartition, FileSystem: "ext4"},
		"/dev/sda2": {Kind: inventory.KindPartition, FileSystem: "ntfs"},
		"/dev/sda3": {Kind: inventory.KindPartition, FileSystem: "xfs"},
	}
	targets := map[string]safety.CheckTarget{
		"/dev/sda1": {MountPoint: "/data", Remount: true},
		"/dev/sda2": {},
		"/dev/sda3": {},
	}
	run := &systemtest.Runner{Results: map[string]system.Result{
		"fsck.ext4 -yvcf /dev/sda1": {ExitCode: 2},
	}}
	mnt := systemtest.NewMounter()
	c := &Checker{Run: run, Mnt: mnt, Prompt: &systemtest.Prompter{}, Log: systemtest.Logger()}
	info := &detect.SystemInfo{}

	results := c.CheckAll(inv, targets, ModeThorough, info)

	// ext4 check, ntfs skip, xfs check plus its badblocks pass
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4: %+v", len(results), results)
	}
	if !results[0].Corrected || results[0].Device != "/dev/sda1" {
		t.Errorf("ext4 result = %+v, want corrected", results[0])
	}
	if results[1].Skipped == "" {
		t.Errorf("ntfs result = %+v, want skipped", results[1])
	}
	if results[2].Device != "/dev/sda3" || results[2].ExitCode != 0 {
		t.Errorf("xfs result = %+v", results[2])
	}
	if !strings.HasPrefix(results[3].Command, "badblocks -sv /dev/sda3") {
		t.Errorf("expected a badblocks pass for xfs, got %+v", results[3])
	}
	if mnt.MountPointOf("/dev/sda1") != "/data" {
		t.Error("partition should be remounted at its prior mount point after the check")
	}
}
