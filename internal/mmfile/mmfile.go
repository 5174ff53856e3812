// Package mmfile maps hive files into memory read-only. The serializer never
// mutates the hive, so mappings are shared and read-only on every platform;
// platforms without a usable mapping primitive fall back to reading the whole
// file.
package mmfile

import (
	"fmt"
	"os"
)

// openSized opens path and checks that its size fits an int-indexed slice.
// The caller owns the returned file.
func openSized(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	size := info.Size()
	if size > int64(^uint(0)>>1) {
		_ = f.Close()
		return nil, 0, fmt.Errorf("mmfile: file too large to map (%d bytes)", size)
	}
	return f, size, nil
}

func noopCleanup() error { return nil }
