package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lherman-cs/go-rosbag"
)

var typesCmd = &cobra.Command{
	Use:   "types FILE",
	Short: "Print a bag's unique message types, sorted",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]
		bag, err := rosbag.OpenMetadata(path)
		if err != nil {
			die("opening %s: %s", path, err)
		}
		for _, t := range bag.Types() {
			fmt.Println(t)
		}
	},
}
