package detect

import (
	"testing"

	"github.com/bootmend/bootmend/internal/system"
	"github.com/bootmend/bootmend/internal/system/systemtest"
)

const registryCommand = "strings /mnt/win/Windows/System32/config/SOFTWARE"

func TestWindowsEdition(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]bool
		registry system.Result
		want     string
	}{
		{
			name:  "dos era",
			files: map[string]bool{"/mnt/win/COMMAND.COM": true, "/mnt/win/IO.SYS": true},
			want:  "Windows 95/98/ME",
		},
		{
			name:  "xp",
			files: map[string]bool{"/mnt/win/ntldr": true, "/mnt/win/NTDETECT.COM": true},
			want:  "Windows XP",
		},
		{
			name:     "vista",
			registry: system.Result{ExitCode: 0, Output: "...\nWindows Vista Home Premium\n..."},
			want:     "Windows Vista",
		},
		{
			name:     "seven",
			registry: system.Result{ExitCode: 0, Output: "Windows 7 Professional"},
			want:     "Windows 7",
		},
		{
			name:     "eight point one",
			registry: system.Result{ExitCode: 0, Output: "Windows 8.1 Pro"},
			want:     "Windows 8/8.1",
		},
		{
			name:     "ten",
			registry: system.Result{ExitCode: 0, Output: "Windows 10 Home"},
			want:     "Windows 10",
		},
		{
			name:     "oldest signature wins",
			files:    map[string]bool{"/mnt/win/ntldr": true, "/mnt/win/NTDETECT.COM": true},
			registry: system.Result{ExitCode: 0, Output: "Windows 10 Home"},
			want:     "Windows XP",
		},
		{
			name:     "unreadable hive falls back to plain label",
			registry: system.Result{ExitCode: 1},
			want:     "Windows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &systemtest.Runner{
				Results: map[string]system.Result{registryCommand: tt.registry},
				Default: system.Result{ExitCode: 1},
			}
			s := &Scanner{
				Run: run,
				Log: systemtest.Logger(),
				Exists: func(path string) bool {
					return tt.files[path]
				},
			}
			if got := s.windowsEdition("/mnt/win"); got != tt.want {
				t.Errorf("windowsEdition() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWindowsRegistryReadOnce(t *testing.T) {
	run := &systemtest.Runner{Results: map[string]system.Result{
		registryCommand: {ExitCode: 0, Output: "nothing recognisable"},
	}}
	s := &Scanner{
		Run:    run,
		Log:    systemtest.Logger(),
		Exists: func(string) bool { return false },
	}

	if got := s.windowsEdition("/mnt/win"); got != "Windows" {
		t.Fatalf("windowsEdition() = %q, want Windows", got)
	}
	reads := 0
	for _, call := range run.Calls {
		if call == registryCommand {
			reads++
		}
	}
	if reads != 1 {
		t.Errorf("registry hive read %d times, want once", reads)
	}
}
