package nvme

import "fmt"

// FormatBytes renders a byte quantity with a human-readable unit suffix, for
// cmd/nvmectl's status output (e.g. reporting backing image size). Adapted
// from the teacher's bitops.go/utils.go formatBytes helper.
func FormatBytes(v uint64) string {
	suffixes := [...]string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}
	d := uint64(1)

	i := 0
	for ; i < len(suffixes)-1; i++ {
		if v >= d*1000 {
			d *= 1000
		} else {
			break
		}
	}

	if i == 0 {
		return fmt.Sprintf("%d %s", v, suffixes[i])
	}
	return fmt.Sprintf("%.3g %s", float64(v)/float64(d), suffixes[i])
}
