//go:build !linux

package logger

func isTerminal(int) bool {
	return false
}
