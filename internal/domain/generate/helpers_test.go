package generate_test

import "fmt"

func fmtSscanLabel(label string, lo, hi *int) (int, error) {
	return fmt.Sscanf(label, "%d-%d", lo, hi)
}
