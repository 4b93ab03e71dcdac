package probe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const readBufferSize = 32 * 1024

// CountFileLines counts newline bytes in the file at root/path, which is what
// wc -l reports.
func CountFileLines(root, path string) (int, error) {
	f, err := os.Open(filepath.Join(root, filepath.FromSlash(path)))
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, readBufferSize)
	count := 0

	for {
		n, readErr := f.Read(buf)
		count += bytes.Count(buf[:n], []byte{'\n'})

		if errors.Is(readErr, io.EOF) {
			return count, nil
		}

		if readErr != nil {
			return 0, fmt.Errorf("read %s: %w", path, readErr)
		}
	}
}
