package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bootmend/bootmend/internal/detect"
	"github.com/bootmend/bootmend/internal/fscheck"
	"github.com/bootmend/bootmend/internal/inventory"
	"github.com/bootmend/bootmend/internal/netcheck"
	"github.com/bootmend/bootmend/internal/pkgman"
	"github.com/bootmend/bootmend/internal/safety"
	"github.com/bootmend/bootmend/internal/system"
	"github.com/bootmend/bootmend/internal/uefi"
)

var repairUEFICmd = &cobra.Command{
	Use:   "repair-uefi",
	Short: "Back up and reinstall UEFI bootloader files for one OS",
	Long: `repair-uefi detects the installed operating systems, picks the target by
name or by partition, verifies the environment (internet connection, package
manager lock, optionally a filesystem check) and then backs up and reinstalls
the failsafe UEFI bootloader files for that OS.`,
	Run: func(cmd *cobra.Command, args []string) {
		osName, _ := cmd.Flags().GetString("os")
		partition, _ := cmd.Flags().GetString("partition")
		skipNetCheck, _ := cmd.Flags().GetBool("skip-net-check")
		checkFilesystems, _ := cmd.Flags().GetBool("check-filesystems")

		if osName == "" && partition == "" {
			fmt.Fprintln(os.Stderr, "one of --os or --partition is required")
			os.Exit(1)
		}

		cfg := loadConfig()
		run, mnt, prompt := collaborators()
		ctx := context.Background()

		inv, err := (&inventory.Collector{Run: run, Log: log}).Collect()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error collecting inventory: %v\n", err)
			os.Exit(1)
		}

		scanner := newScanner(cfg, inv, run, mnt, prompt)
		oses, info, err := scanner.DetectOperatingSystems()
		if errors.Is(err, detect.ErrNoOperatingSystems) {
			fmt.Fprintln(os.Stderr, "No operating systems were found on any disk.")
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		record := pickTarget(oses, inv, osName, partition)
		if record == nil {
			fmt.Fprintln(os.Stderr, "No detected operating system matches the given target.")
			os.Exit(1)
		}
		if record.PackageManager != detect.PackageManagerAPT && record.PackageManager != detect.PackageManagerDNF {
			fmt.Fprintf(os.Stderr, "Bootloader repair is only supported for Linux installations; %s is managed by %s.\n",
				record.Name, record.PackageManager)
			os.Exit(1)
		}

		if checkFilesystems {
			printCheckResults(repairChecks(run, mnt, prompt, log, inv, info))
		}

		if !skipNetCheck {
			gate := &netcheck.Gate{Run: run, Prompt: prompt, Log: log, Target: cfg.PingTarget}
			gate.Check(ctx, info)
		}
		if info.DisableBootloaderOperations {
			fmt.Fprintln(os.Stderr, "Bootloader operations are disabled:")
			for _, reason := range info.DisableBootloaderOperationsBecause {
				fmt.Fprintf(os.Stderr, "  - %s\n", reason)
			}
			os.Exit(1)
		}

		// Non-current installations are repaired through a temporary mount.
		mountPoint := ""
		if !record.IsCurrentOS {
			mountPoint = cfg.MountRoot + record.Partition
			if mnt.Mount(record.Partition, mountPoint) != 0 {
				fmt.Fprintf(os.Stderr, "Could not mount %s for repair.\n", record.Partition)
				os.Exit(1)
			}
			defer func() {
				if mnt.Unmount(mountPoint) != 0 {
					log.WithField("partition", record.Partition).Warn("failed to unmount after repair")
				}
			}()
		}

		if err := pkgman.WaitUntilFree(ctx, run, log, mountPoint, record.PackageManager); err != nil {
			fmt.Fprintf(os.Stderr, "Error waiting for the package manager: %v\n", err)
			os.Exit(1)
		}

		manager := &uefi.Manager{Run: run, Log: log}
		manager.BackupFiles(mountPoint)
		if err := manager.InstallBootloaderFiles(record, mountPoint); err != nil {
			fmt.Fprintf(os.Stderr, "Error installing bootloader files: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("UEFI bootloader files repaired for %s.\n", record.Name)
	},
}

// repairChecks runs a quick filesystem check over every safe partition before
// a bootloader repair. Check failures offer to disable bootloader operations,
// and that decision lands on info where the repair gate reads it.
func repairChecks(run system.Runner, mnt system.Mounter, prompt system.Prompter, logger *logrus.Logger, inv inventory.Map, info *detect.SystemInfo) []fscheck.Result {
	classifier := &safety.Classifier{Run: run, Mnt: mnt, Log: logger}
	targets, skips := classifier.FindCheckableFilesystems(inv, info)
	printSafety(targets, skips)

	checker := &fscheck.Checker{
		Run:                  run,
		Mnt:                  mnt,
		Prompt:               prompt,
		Log:                  logger,
		BootloaderOpsPlanned: true,
	}
	return checker.CheckAll(inv, targets, fscheck.ModeQuick, info)
}

// pickTarget resolves the target OS record by display name, or by matching a
// partition identifier against each record's root/boot/EFI roles.
func pickTarget(oses map[string]detect.OSRecord, inv inventory.Map, osName, partition string) *detect.OSRecord {
	if osName != "" {
		if record, ok := oses[osName]; ok {
			return &record
		}
		return nil
	}
	for _, record := range sortedRecords(oses) {
		if detect.PartitionMatchesOS(partition, &record, inv) {
			return &record
		}
	}
	return nil
}

func init() {
	repairUEFICmd.Flags().String("os", "", "target OS by detected display name")
	repairUEFICmd.Flags().String("partition", "", "target OS by partition device path or UUID")
	repairUEFICmd.Flags().Bool("skip-net-check", false, "skip the internet connection test")
	repairUEFICmd.Flags().Bool("check-filesystems", false, "run a quick filesystem check over every safe partition first")
}
