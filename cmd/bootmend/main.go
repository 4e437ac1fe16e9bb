package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bootmend/bootmend/internal/config"
	"github.com/bootmend/bootmend/internal/system"
	"github.com/bootmend/bootmend/internal/version"
)

var (
	cfgFile string
	verbose bool
	log     = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "bootmend",
	Short: "Disk, OS and bootloader repair tool",
	Long: `bootmend detects operating systems, disks, partitions and bootloaders
on a machine and performs guided repair operations: filesystem checks,
bootloader reinstallation and UEFI file management.`,
	Version: version.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	},
}

// loadConfig loads the YAML config or exits with a message.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// collaborators builds the real capability implementations shared by all
// subcommands.
func collaborators() (system.Runner, system.Mounter, system.Prompter) {
	run := system.ExecRunner{}
	return run, &system.ProcMounter{Run: run}, system.NewStdioPrompter()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/bootmend/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(repairUEFICmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
