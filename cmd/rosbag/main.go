// Command rosbag inspects ROS bag v2.0 files: printing their metadata
// summary, or listing their topics and types.
package main

func main() {
	Execute()
}
