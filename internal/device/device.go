// Package device resolves which compute device a model host runs on.
package device

import (
	"fmt"
	"os"
	"strings"
)

const (
	CPU  = "cpu"
	CUDA = "cuda"
	Auto = "auto"
)

// probe reports whether a CUDA device is visible to this process.
// Replaced in tests.
var probe = cudaPresent

// Normalize validates a device preference. An empty preference means Auto.
func Normalize(name string) (string, error) {
	dev := strings.ToLower(strings.TrimSpace(name))
	if dev == "" {
		return Auto, nil
	}
	switch dev {
	case CPU, CUDA, Auto:
		return dev, nil
	default:
		return "", fmt.Errorf("unknown device %q (expected auto, cpu, or cuda)", dev)
	}
}

// CUDAAvailable reports whether a CUDA device can be used from this machine.
// CUDA_VISIBLE_DEVICES set to an empty string or -1 hides all devices.
func CUDAAvailable() bool {
	if v, ok := os.LookupEnv("CUDA_VISIBLE_DEVICES"); ok {
		v = strings.TrimSpace(v)
		if v == "" || v == "-1" {
			return false
		}
	}
	return probe()
}

// Available returns a comma-separated list of usable devices.
func Available() string {
	entries := []string{CPU}
	if CUDAAvailable() {
		entries = append(entries, CUDA)
	}
	return strings.Join(entries, ",")
}

// Select reconciles a normalized preference with the device the generation
// runtime reports. The reported device wins for Auto; an explicit preference
// must match it. When the runtime reports nothing the local probe decides.
func Select(preferred, reported string) (string, error) {
	reported = canonical(reported)
	if reported == "" {
		switch preferred {
		case Auto:
			if CUDAAvailable() {
				return CUDA, nil
			}
			return CPU, nil
		case CUDA:
			if !CUDAAvailable() {
				return "", fmt.Errorf("cuda requested but no CUDA device is visible")
			}
			return CUDA, nil
		default:
			return preferred, nil
		}
	}
	if preferred == Auto || preferred == reported {
		return reported, nil
	}
	return "", fmt.Errorf("runtime runs on %q but %q was requested", reported, preferred)
}

// canonical maps runtime device strings such as "cuda:0" or "GPU" onto the
// names used here.
func canonical(name string) string {
	dev := strings.ToLower(strings.TrimSpace(name))
	if i := strings.IndexByte(dev, ':'); i >= 0 {
		dev = dev[:i]
	}
	if dev == "gpu" {
		return CUDA
	}
	return dev
}
