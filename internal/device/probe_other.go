//go:build !linux

package device

func cudaPresent() bool {
	return false
}
