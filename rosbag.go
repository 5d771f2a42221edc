// Package rosbag implements a reader for ROS bag v2.0 files
// (http://wiki.ros.org/Bags/Format/2.0): parsing the record structure,
// reconstructing the per-connection message index, decompressing chunk
// bodies, and exposing a query-filtered iterator of message views that
// can be materialized into typed values by an external deserializer.
package rosbag

import "fmt"

const versionFormat = "#ROSBAG V%d.%d\n"

// Version is a bag's declared format version.
type Version struct {
	Major uint
	Minor uint
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

var supportedVersion = Version{Major: 2, Minor: 0}
