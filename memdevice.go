package fatfs

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xaionaro-go/bytesextra"
)

// MemoryDevice is a reference BlockDevice backed by an in-memory byte
// slice, for tests and for the cmd/ tools in this module. It adapts the
// slice to a seekable stream via bytesextra rather than indexing the
// slice by hand.
type MemoryDevice struct {
	stream io.ReadWriteSeeker
	hook   ReadHook
}

// NewMemoryDevice wraps data as a BlockDevice. data is not copied.
func NewMemoryDevice(data []byte) *MemoryDevice {
	return &MemoryDevice{stream: bytesextra.NewReadWriteSeeker(data)}
}

func (m *MemoryDevice) SetReadHook(hook ReadHook) { m.hook = hook }

// ReadAt reads length bytes starting at byte_offset_within_sector
// offset of the given sector. offset may exceed 512; the read then
// straddles into subsequent sectors, which this single contiguous
// backing buffer handles without any special casing.
func (m *MemoryDevice) ReadAt(sector uint32, offset, length int, dst []byte) error {
	pos := int64(sector)*512 + int64(offset)
	if _, err := m.stream.Seek(pos, io.SeekStart); err != nil {
		return errors.Wrap(err, "fatfs: memory device seek")
	}
	if _, err := io.ReadFull(m.stream, dst[:length]); err != nil {
		return errors.Wrap(err, "fatfs: memory device read")
	}
	if m.hook != nil {
		m.hook(sector, offset, length)
	}
	return nil
}
