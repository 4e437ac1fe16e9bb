package db

import (
	"fmt"
	"time"

	"github.com/bootmend/bootmend/internal/detect"
	"github.com/bootmend/bootmend/internal/safety"
)

// ScanSummary is one row of scan history.
type ScanSummary struct {
	ID        string
	StartedAt time.Time
	LiveDisk  bool
	OSCount   int
	SkipCount int
}

// SaveScan records one detection run, its OS table and its skip decisions in
// a single transaction.
func (d *DB) SaveScan(scanID string, startedAt time.Time, info *detect.SystemInfo, oses map[string]detect.OSRecord, skips []safety.Skip) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}

	liveDisk := 0
	if info != nil && info.IsLiveDisk {
		liveDisk = 1
	}
	if _, err := tx.Exec("INSERT INTO scans (id, started_at, live_disk) VALUES (?, ?, ?)",
		scanID, startedAt, liveDisk); err != nil {
		tx.Rollback()
		return fmt.Errorf("recording scan: %w", err)
	}

	for _, record := range oses {
		current := 0
		if record.IsCurrentOS {
			current = 1
		}
		if _, err := tx.Exec(`INSERT INTO scan_oses
			(scan_id, name, is_current, arch, root_partition, package_manager, efi_partition, boot_partition)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			scanID, record.Name, current, record.Arch, record.Partition,
			record.PackageManager, record.EFIPartition, record.BootPartition); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording OS %s: %w", record.Name, err)
		}
	}

	for _, skip := range skips {
		if _, err := tx.Exec("INSERT INTO scan_skips (scan_id, device, reason) VALUES (?, ?, ?)",
			scanID, skip.Device, skip.Reason); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording skip for %s: %w", skip.Device, err)
		}
	}

	return tx.Commit()
}

// ListScans returns the most recent scans, newest first.
func (d *DB) ListScans(limit int) ([]ScanSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.conn.Query(`
		SELECT s.id, s.started_at, s.live_disk,
		       (SELECT COUNT(*) FROM scan_oses o WHERE o.scan_id = s.id),
		       (SELECT COUNT(*) FROM scan_skips k WHERE k.scan_id = s.id)
		FROM scans s
		ORDER BY s.started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scans []ScanSummary
	for rows.Next() {
		var s ScanSummary
		var live int
		if err := rows.Scan(&s.ID, &s.StartedAt, &live, &s.OSCount, &s.SkipCount); err != nil {
			return nil, err
		}
		s.LiveDisk = live == 1
		scans = append(scans, s)
	}
	return scans, rows.Err()
}

// ScanOSes returns the OS rows recorded for one scan.
func (d *DB) ScanOSes(scanID string) ([]detect.OSRecord, error) {
	rows, err := d.conn.Query(`
		SELECT name, is_current, arch, root_partition, package_manager, efi_partition, boot_partition
		FROM scan_oses WHERE scan_id = ? ORDER BY name`, scanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []detect.OSRecord
	for rows.Next() {
		var r detect.OSRecord
		var current int
		if err := rows.Scan(&r.Name, &current, &r.Arch, &r.Partition, &r.PackageManager, &r.EFIPartition, &r.BootPartition); err != nil {
			return nil, err
		}
		r.IsCurrentOS = current == 1
		records = append(records, r)
	}
	return records, rows.Err()
}
