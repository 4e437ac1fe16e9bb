package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bootmend/bootmend/internal/detect"
	"github.com/bootmend/bootmend/internal/fscheck"
	"github.com/bootmend/bootmend/internal/inventory"
	"github.com/bootmend/bootmend/internal/safety"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run filesystem consistency checks on every safe partition",
	Long: `check classifies every partition with the safety gate and runs the
appropriate filesystem checker over the approved ones. With --thorough it also
scans for bad sectors where the checker cannot.`,
	Run: func(cmd *cobra.Command, args []string) {
		thorough, _ := cmd.Flags().GetBool("thorough")
		cfg := loadConfig()
		run, mnt, prompt := collaborators()

		inv, err := (&inventory.Collector{Run: run, Log: log}).Collect()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error collecting inventory: %v\n", err)
			os.Exit(1)
		}

		scanner := newScanner(cfg, inv, run, mnt, prompt)
		_, info, err := scanner.DetectOperatingSystems()
		if errors.Is(err, detect.ErrNoOperatingSystems) {
			fmt.Fprintln(os.Stderr, "No operating systems were found on any disk.")
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		classifier := &safety.Classifier{Run: run, Mnt: mnt, Log: log}
		targets, skips := classifier.FindCheckableFilesystems(inv, info)
		printSafety(targets, skips)

		mode := fscheck.ModeQuick
		if thorough {
			mode = fscheck.ModeThorough
		}
		checker := &fscheck.Checker{Run: run, Mnt: mnt, Prompt: prompt, Log: log}
		results := checker.CheckAll(inv, targets, mode, info)
		printCheckResults(results)
	},
}

func printCheckResults(results []fscheck.Result) {
	fmt.Println()
	for _, res := range results {
		switch {
		case res.Skipped != "":
			fmt.Printf("%s: skipped (%s)\n", res.Device, res.Skipped)
		case res.ExitCode == 0:
			fmt.Printf("%s: ok\n", res.Device)
		case res.Corrected:
			fmt.Printf("%s: errors found and fixed\n", res.Device)
		default:
			fmt.Printf("%s: FAILED (exit code %d)\n", res.Device, res.ExitCode)
		}
	}
}

func init() {
	checkCmd.Flags().Bool("thorough", false, "also scan for bad sectors")
}
