package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/k0kubun/pp"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/lherman-cs/go-rosbag"
)

var (
	infoMinimal bool
	infoDebug   bool
)

var infoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Print a bag's metadata summary",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]
		bag, err := rosbag.OpenMetadata(path)
		if err != nil {
			die("opening %s: %s", path, err)
		}

		if infoDebug {
			pp.Println(bag.ChunkMetadataTable())
		}

		if err := printInfo(os.Stdout, path, bag, infoMinimal); err != nil {
			die("printing info for %s: %s", path, err)
		}
	},
}

func init() {
	infoCmd.Flags().BoolVar(&infoMinimal, "minimal", false, "omit the per-type and per-topic listings")
	infoCmd.Flags().BoolVar(&infoDebug, "debug", false, "dump the bag's raw chunk metadata before the summary")
}

const labelWidth = 13

func label(s string) string {
	if len(s) >= labelWidth {
		return s
	}
	return s + strings.Repeat(" ", labelWidth-len(s))
}

func humanBytes(numBytes uint64) string {
	prefixes := []string{"B", "KiB", "MiB", "GiB", "TiB"}
	value := float64(numBytes)
	for _, p := range prefixes[:len(prefixes)-1] {
		if value < 1024 {
			return fmt.Sprintf("%.2f %s", value, p)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.2f %s", value, prefixes[len(prefixes)-1])
}

func printInfo(w io.Writer, path string, bag *rosbag.Bag, minimal bool) error {
	fmt.Fprintf(w, "%s%s\n", label("path:"), path)
	fmt.Fprintf(w, "%s%s\n", label("version:"), bag.Version.String())
	fmt.Fprintf(w, "%s%s\n", label("duration:"), bag.Duration())

	if start, ok := bag.StartTime(); ok {
		fmt.Fprintf(w, "%s%s (%.9f)\n", label("start:"), start.UTC().Format("2006-01-02 15:04:05.000000000"), start.Epoch())
	} else {
		fmt.Fprintf(w, "%s%s\n", label("start:"), "n/a")
	}
	if end, ok := bag.EndTime(); ok {
		fmt.Fprintf(w, "%s%s (%.9f)\n", label("end:"), end.UTC().Format("2006-01-02 15:04:05.000000000"), end.Epoch())
	} else {
		fmt.Fprintf(w, "%s%s\n", label("end:"), "n/a")
	}

	if info, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "%s%d B (%s)\n", label("size:"), info.Size(), humanBytes(uint64(info.Size())))
	}

	fmt.Fprintf(w, "%s%d\n", label("messages:"), bag.MessageCount())

	printCompressionInfo(w, bag)

	if minimal {
		return nil
	}

	printTypesAndTopics(w, bag)
	return nil
}

func printCompressionInfo(w io.Writer, bag *rosbag.Bag) {
	stats := bag.CompressionInfo()
	if len(stats) == 0 {
		fmt.Fprintf(w, "%s%s\n", label("compression:"), "n/a")
		return
	}

	var totalCompressed, totalUncompressed uint64
	for _, s := range stats {
		totalCompressed += s.TotalCompressedBytes
		totalUncompressed += s.TotalUncompressedBytes
	}

	// stats is already sorted descending by compressed total; print as-is.
	for i, s := range stats {
		col := ""
		if i == 0 {
			col = "compression:"
		}
		pctCompressed := percentOf(s.TotalCompressedBytes, totalCompressed)
		pctUncompressed := percentOf(s.TotalUncompressedBytes, totalUncompressed)
		fmt.Fprintf(w, "%s%s [%d/%d chunks; %.1f%%/%.1f%% compressed/uncompressed]\n",
			label(col), s.Name, s.ChunkCount, bag.NumChunks(), pctCompressed, pctUncompressed)
	}
}

func percentOf(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}

// typeAndMD5 is the dedup/sort key for the "types:" listing: two
// connections can share a type name while carrying different schemas, so
// md5sum has to be part of the key or they'd collapse into one line.
type typeAndMD5 struct {
	dataType string
	md5sum   string
}

func printTypesAndTopics(w io.Writer, bag *rosbag.Bag) {
	conns := bag.Connections()

	seen := make(map[typeAndMD5]bool)
	var pairs []typeAndMD5
	for _, c := range conns {
		key := typeAndMD5{dataType: c.DataType, md5sum: c.MD5Sum}
		if seen[key] {
			continue
		}
		seen[key] = true
		pairs = append(pairs, key)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].dataType != pairs[j].dataType {
			return pairs[i].dataType < pairs[j].dataType
		}
		return pairs[i].md5sum < pairs[j].md5sum
	})
	for i, p := range pairs {
		col := ""
		if i == 0 {
			col = "types:"
		}
		fmt.Fprintf(w, "%s%s [%s]\n", label(col), p.dataType, p.md5sum)
	}

	counts := bag.TopicMessageCounts()
	topics := bag.Topics()
	topicToType := make(map[string]string, len(conns))
	for _, c := range conns {
		topicToType[c.Topic] = c.DataType
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"topic", "messages", "type"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, topic := range topics {
		table.Append([]string{topic, fmt.Sprintf("%d", counts[topic]), topicToType[topic]})
	}
	if len(topics) > 0 {
		fmt.Fprint(w, label("topics:"))
		fmt.Fprintln(w)
		table.Render()
	}
}
