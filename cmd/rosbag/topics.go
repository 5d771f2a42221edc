package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lherman-cs/go-rosbag"
)

var topicsCmd = &cobra.Command{
	Use:   "topics FILE",
	Short: "Print a bag's unique topics, sorted",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]
		bag, err := rosbag.OpenMetadata(path)
		if err != nil {
			die("opening %s: %s", path, err)
		}
		for _, topic := range bag.Topics() {
			fmt.Println(topic)
		}
	},
}
