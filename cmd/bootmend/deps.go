package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bootmend/bootmend/internal/depends"
	"github.com/bootmend/bootmend/internal/system"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Verify that all required host utilities are installed",
	Run: func(cmd *cobra.Command, args []string) {
		if err := depends.Check(system.ExecRunner{}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("All required utilities are installed.")
	},
}
