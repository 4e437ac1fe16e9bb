package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bootmend/bootmend/internal/db"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded scans",
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		scanID, _ := cmd.Flags().GetString("scan")
		cfg := loadConfig()

		database, err := db.New(cfg.DatabasePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			os.Exit(1)
		}
		defer database.Close()

		if scanID != "" {
			oses, err := database.ScanOSes(scanID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading scan %s: %v\n", scanID, err)
				os.Exit(1)
			}
			if len(oses) == 0 {
				fmt.Printf("No operating systems recorded for scan %s.\n", scanID)
				return
			}
			for _, record := range oses {
				marker := ""
				if record.IsCurrentOS {
					marker = " (current)"
				}
				fmt.Printf("%s%s\n  partition=%s arch=%s package_manager=%s boot=%s efi=%s\n",
					record.Name, marker, record.Partition, record.Arch, record.PackageManager,
					record.BootPartition, record.EFIPartition)
			}
			return
		}

		scans, err := database.ListScans(limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing scans: %v\n", err)
			os.Exit(1)
		}
		if len(scans) == 0 {
			fmt.Println("No scans recorded yet.")
			return
		}

		fmt.Printf("%-38s %-21s %-10s %-4s %-5s\n", "SCAN", "STARTED", "LIVE DISK", "OSES", "SKIPS")
		for _, s := range scans {
			fmt.Printf("%-38s %-21s %-10t %-4d %-5d\n",
				s.ID, s.StartedAt.Format("2006-01-02 15:04:05"), s.LiveDisk, s.OSCount, s.SkipCount)
		}
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of scans to list")
	historyCmd.Flags().String("scan", "", "show the operating systems recorded by one scan")
}
