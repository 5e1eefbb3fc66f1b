package util

import "os"

// ReadSource reads an entire Genko source file into memory.
func ReadSource(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
