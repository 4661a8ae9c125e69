package simh

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// File is a read-only view of a whole tape image.
type File struct {
	Data    []byte
	mmapped bool
}

// Open maps a tape image read-only. If mmap is unavailable the file is
// loaded with ReadAt instead. The returned file must be closed to release
// any mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size64 := stat.Size()
	if size64 < 0 || size64 > int64(int(^uint(0)>>1)) {
		return nil, ErrTapeTooLarge
	}
	size := int(size64)
	if size == 0 {
		return &File{Data: []byte{}}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		return &File{Data: data, mmapped: true}, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return &File{Data: data}, nil
}

// OpenReaderAt loads a tape image from a random-access reader without mmap.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return nil, ErrTapeTooLarge
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return &File{Data: data}, nil
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

// Close releases the mapping, if any. The Data slice must not be used
// afterwards.
func (f *File) Close() error {
	if f == nil || f.Data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.Data)
	}
	f.Data = nil
	f.mmapped = false
	return err
}

// Reader returns a block reader positioned at the start of the image.
func (f *File) Reader() *Reader {
	return NewReader(bytes.NewReader(f.Data))
}

// TrailingMarks returns the trailing tape-mark count of the image.
func (f *File) TrailingMarks() int {
	return CountTrailingMarks(f.Data)
}
