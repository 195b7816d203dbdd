package progress

import "fmt"

var units = []string{"B", "KB", "MB", "GB"}

// HumanSize renders a byte count in binary units with two decimal places.
// Subdivision stops at GB.
func HumanSize(n int64) string {
	size := float64(n)
	unit := 0
	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	return fmt.Sprintf("%.2f %s", size, units[unit])
}
