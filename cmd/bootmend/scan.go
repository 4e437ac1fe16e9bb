package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bootmend/bootmend/internal/config"
	"github.com/bootmend/bootmend/internal/db"
	"github.com/bootmend/bootmend/internal/detect"
	"github.com/bootmend/bootmend/internal/inventory"
	"github.com/bootmend/bootmend/internal/safety"
	"github.com/bootmend/bootmend/internal/system"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Detect operating systems and classify checkable filesystems",
	Run: func(cmd *cobra.Command, args []string) {
		noSave, _ := cmd.Flags().GetBool("no-save")
		cfg := loadConfig()
		run, mnt, prompt := collaborators()

		inv, err := (&inventory.Collector{Run: run, Log: log}).Collect()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error collecting inventory: %v\n", err)
			os.Exit(1)
		}
		printInventory(inv)

		startedAt := time.Now()
		scanner := newScanner(cfg, inv, run, mnt, prompt)
		oses, info, err := scanner.DetectOperatingSystems()
		if errors.Is(err, detect.ErrNoOperatingSystems) {
			fmt.Fprintln(os.Stderr, "No operating systems were found on any disk. "+
				"If you do have installations that were not found, please file a bug.")
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printOSes(oses, info)

		classifier := &safety.Classifier{Run: run, Mnt: mnt, Log: log}
		targets, skips := classifier.FindCheckableFilesystems(inv, info)
		printSafety(targets, skips)

		if noSave {
			return
		}
		store, err := db.New(cfg.DatabasePath)
		if err != nil {
			log.WithError(err).Warn("could not open the scan history database")
			return
		}
		defer store.Close()
		scanID := uuid.NewString()
		if err := store.SaveScan(scanID, startedAt, info, oses, skips); err != nil {
			log.WithError(err).Warn("could not record the scan")
			return
		}
		fmt.Printf("\nScan recorded as %s\n", scanID)
	},
}

func init() {
	scanCmd.Flags().Bool("no-save", false, "do not record the scan in the history database")
}

// newScanner applies config overrides on top of the default scanner.
func newScanner(cfg *config.Config, inv inventory.Map, run system.Runner, mnt system.Mounter, prompt system.Prompter) *detect.Scanner {
	scanner := detect.NewScanner(inv, run, mnt, prompt, log)
	if cfg.MountRoot != "" {
		scanner.MountRoot = cfg.MountRoot
	}
	if cfg.LiveDisk != nil {
		scanner.IsLiveDisk = *cfg.LiveDisk
	}
	return scanner
}

func printInventory(inv inventory.Map) {
	fmt.Printf("%-20s %-10s %-12s %-10s %s\n", "DEVICE", "KIND", "FILESYSTEM", "SIZE", "UUID")
	for _, device := range inv.SortedKeys() {
		entry := inv[device]
		size := ""
		if entry.SizeBytes > 0 {
			size = humanize.IBytes(uint64(entry.SizeBytes))
		}
		fmt.Printf("%-20s %-10s %-12s %-10s %s\n", device, entry.Kind, entry.FileSystem, size, entry.UUID)
	}
}

func printOSes(oses map[string]detect.OSRecord, info *detect.SystemInfo) {
	fmt.Printf("\nDetected operating systems:\n")
	for _, record := range sortedRecords(oses) {
		marker := ""
		if record.IsCurrentOS {
			marker = " (current)"
		}
		fmt.Printf("  %s%s\n    partition=%s arch=%s package_manager=%s boot=%s efi=%s\n",
			record.Name, marker, record.Partition, record.Arch, record.PackageManager,
			record.BootPartition, record.EFIPartition)
	}
	if info.CurrentOS == nil {
		fmt.Println("  (none of them is the running system)")
	}
}

func printSafety(targets map[string]safety.CheckTarget, skips []safety.Skip) {
	fmt.Printf("\nCheckable filesystems: %d\n", len(targets))
	if len(skips) > 0 {
		fmt.Println("The following filesystems will not be checked:")
		for _, skip := range skips {
			fmt.Printf("  %s\n", skip)
		}
	}
}

func sortedRecords(oses map[string]detect.OSRecord) []detect.OSRecord {
	names := make([]string, 0, len(oses))
	for name := range oses {
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]detect.OSRecord, 0, len(oses))
	for _, name := range names {
		records = append(records, oses[name])
	}
	return records
}
