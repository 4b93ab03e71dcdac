package report

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// CompressedSuffix marks report files written through LZ4 frame compression.
const CompressedSuffix = ".lz4"

// WriteFile writes the output of render to path atomically: the data goes to a
// temporary file in the same directory which then replaces path. Paths ending
// in .lz4 are compressed.
func WriteFile(path string, render func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	buffered := bufio.NewWriter(tmp)

	var out io.Writer = buffered

	var zw *lz4.Writer

	if IsCompressed(path) {
		zw = lz4.NewWriter(buffered)
		out = zw
	}

	err = render(out)
	if err != nil {
		return err
	}

	if zw != nil {
		err = zw.Close()
		if err != nil {
			return fmt.Errorf("close lz4 writer: %w", err)
		}
	}

	err = buffered.Flush()
	if err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}

	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	err = os.Chmod(tmpName, 0o644)
	if err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	err = os.Rename(tmpName, path)
	if err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}

// IsCompressed reports whether path names an LZ4-compressed report.
func IsCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), CompressedSuffix)
}

// ReadFile reads a report file, decompressing it when it is LZ4-compressed.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if !IsCompressed(path) {
		return data, nil
	}

	plain, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}

	return plain, nil
}
