//go:build linux

package device

import "golang.org/x/sys/unix"

var cudaNodes = []string{"/dev/nvidiactl", "/dev/nvidia0"}

func cudaPresent() bool {
	for _, node := range cudaNodes {
		if unix.Access(node, unix.R_OK) == nil {
			return true
		}
	}
	return false
}
