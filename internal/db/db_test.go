package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/bootmend/bootmend/internal/detect"
	"github.com/bootmend/bootmend/internal/safety"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestSaveAndListScans(t *testing.T) {
	d := openTestDB(t)

	oses := map[string]detect.OSRecord{
		"Ubuntu 22.04": {
			Name: "Ubuntu 22.04", IsCurrentOS: true, Arch: "x86_64",
			Partition: "/dev/sda2", PackageManager: detect.PackageManagerAPT,
			EFIPartition: "/dev/sda1", BootPartition: "Unknown",
		},
		"Windows 10 (/dev/sdb1)": {
			Name: "Windows 10 (/dev/sdb1)", Arch: "Unknown",
			Partition: "/dev/sdb1", PackageManager: detect.PackageManagerWindows,
			EFIPartition: "Unknown", BootPartition: "Unknown",
		},
	}
	skips := []safety.Skip{
		{Device: "/dev/sdc1", Reason: safety.ReasonUnknownFS},
	}
	info := &detect.SystemInfo{IsLiveDisk: true}
	started := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)

	if err := d.SaveScan("scan-1", started, info, oses, skips); err != nil {
		t.Fatal(err)
	}
	if err := d.SaveScan("scan-2", started.Add(time.Hour), &detect.SystemInfo{}, nil, nil); err != nil {
		t.Fatal(err)
	}

	scans, err := d.ListScans(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(scans) != 2 {
		t.Fatalf("got %d scans, want 2", len(scans))
	}
	if scans[0].ID != "scan-2" {
		t.Errorf("scans must come back newest first, got %q", scans[0].ID)
	}
	first := scans[1]
	if first.ID != "scan-1" || !first.LiveDisk || first.OSCount != 2 || first.SkipCount != 1 {
		t.Errorf("scan summary = %+v", first)
	}
}

func TestScanOSesRoundTrip(t *testing.T) {
	d := openTestDB(t)

	record := detect.OSRecord{
		Name: "Fedora Linux 40", IsCurrentOS: true, Arch: "x86_64",
		Partition: "/dev/nvme0n1p3", PackageManager: detect.PackageManagerDNF,
		EFIPartition: "/dev/nvme0n1p1", BootPartition: "/dev/nvme0n1p2",
	}
	err := d.SaveScan("scan-1", time.Now(), &detect.SystemInfo{},
		map[string]detect.OSRecord{record.Name: record}, nil)
	if err != nil {
		t.Fatal(err)
	}

	records, err := d.ScanOSes("scan-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	got := records[0]
	if got.Name != record.Name || !got.IsCurrentOS || got.Arch != record.Arch ||
		got.Partition != record.Partition || got.PackageManager != record.PackageManager ||
		got.EFIPartition != record.EFIPartition || got.BootPartition != record.BootPartition {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, record)
	}
}

func TestScanOSesUnknownScan(t *testing.T) {
	d := openTestDB(t)
	records, err := d.ScanOSes("no-such-scan")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("got %v, want none", records)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	d, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	d.Close()

	d, err = New(path)
	if err != nil {
		t.Fatalf("reopening the database reran migrations badly: %v", err)
	}
	d.Close()
}
