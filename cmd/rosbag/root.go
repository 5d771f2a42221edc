package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rosbag",
	Short: "Inspect ROS bag v2.0 files",
}

// Execute runs the root command, exiting non-zero on any surfaced error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func die(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, fmt.Sprintf(format, args...))
	os.Exit(1)
}

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(typesCmd)
}
