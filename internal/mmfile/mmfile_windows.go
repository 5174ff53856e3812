//go:build windows

package mmfile

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Map maps the file at path into memory read-only and returns its contents
// together with a cleanup function releasing the view and the file handle.
func Map(path string) ([]byte, func() error, error) {
	f, size, err := openSized(path)
	if err != nil {
		return nil, nil, err
	}
	if size == 0 {
		_ = f.Close()
		return []byte{}, noopCleanup, nil
	}

	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READONLY, 0, 0, nil)
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("mmfile: CreateFileMapping: %w", err)
	}
	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		_ = windows.CloseHandle(h)
		_ = f.Close()
		return nil, nil, fmt.Errorf("mmfile: MapViewOfFile: %w", err)
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	cleanup := func() error {
		err := windows.UnmapViewOfFile(addr)
		_ = windows.CloseHandle(h)
		_ = f.Close()
		return err
	}
	return data, cleanup, nil
}
