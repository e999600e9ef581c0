// Package fatfs is a read-only driver for FAT12, FAT16 and FAT32
// volumes, intended for hosts like bootloaders: mount a volume from a
// raw block device, resolve a path, enumerate a directory, stream file
// bytes. There is no write path, no cache, and no allocation; this
// driver only ever reads.
package fatfs

import (
	"context"
	"io"
	"log/slog"
)

// MountOptions configures a Mount call.
type MountOptions struct {
	// Logger receives trace/debug/info/warn/error diagnostics. Nil
	// disables logging entirely.
	Logger *slog.Logger

	// PartitionOffset shifts every sector address this driver issues to
	// the device by this many 512-byte sectors, so a Driver can be
	// mounted directly against a whole raw disk image once a partition
	// locator (internal/mbr) has found where the FAT volume starts.
	PartitionOffset uint32
}

// Driver is a mounted FAT volume: the geometry computed at mount plus
// the block device it reads from. There is no shared global state;
// each Driver is owned directly by whatever called Mount.
type Driver struct {
	bd   BlockDevice
	vol  *Volume
	opts MountOptions
}

// offsetDevice shifts every read by opts.PartitionOffset sectors,
// letting Mount be called directly against a raw disk image.
type offsetDevice struct {
	BlockDevice
	offset uint32
}

func (o offsetDevice) ReadAt(sector uint32, offset, length int, dst []byte) error {
	return o.BlockDevice.ReadAt(sector+o.offset, offset, length, dst)
}

// Mount reads the BPB, validates it, and discriminates the FAT variant.
// It fails with a BAD_FS *Error on any inconsistency.
func Mount(ctx context.Context, bd BlockDevice, opts MountOptions) (*Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.PartitionOffset != 0 {
		bd = offsetDevice{BlockDevice: bd, offset: opts.PartitionOffset}
	}
	d := &Driver{bd: bd, opts: opts}

	vol, err := mountVolume(bd)
	if err != nil {
		d.logerror("mount failed", "error", err)
		return nil, err
	}
	d.vol = vol
	d.info("mounted", "fat_size", vol.FATSize, "num_clusters", vol.NumClusters)
	return d, nil
}

// Close releases the Driver's reference to its block device. It never
// fails: there is nothing buffered to flush in a read-only driver.
func (d *Driver) Close() error {
	d.bd = nil
	d.vol = nil
	return nil
}

func (d *Driver) rootState() entryState {
	return entryState{attr: attrDirectory, fileCluster: d.vol.Root, cur: invalidCursor()}
}

// File is a handle to an open, resolved file. It is not safe for
// concurrent use: each reader of the same on-disk file needs its own
// File.
type File struct {
	drv    *Driver
	state  entryState
	offset int64
}

// Open resolves path and returns a File for it. It rejects a path that
// resolves to a directory with BAD_FILE_TYPE.
func (d *Driver) Open(ctx context.Context, path string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st := d.rootState()
	if err := d.vol.resolve(d.bd, &st, path); err != nil {
		d.debug("open failed", "path", path, "error", err)
		return nil, err
	}
	if st.attr&attrDirectory != 0 {
		return nil, badFileType("is a directory: " + path)
	}
	d.trace("opened file", "path", path, "size", st.fileSize)
	return &File{drv: d, state: st}, nil
}

// Read implements io.Reader, advancing the file's offset by the number
// of bytes delivered. It clamps the request to what remains before
// file_size, since the underlying positional read only stops at
// end-of-chain and would otherwise hand back whatever slack is left in
// the final cluster. It returns io.EOF once the offset reaches
// file_size, matching the standard Reader contract.
func (f *File) Read(p []byte) (int, error) {
	rem := f.state.fileSize - f.offset
	if rem <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > rem {
		p = p[:rem]
	}

	n, err := f.drv.vol.readData(f.drv.bd, &f.state, nil, f.offset, p)
	if err != nil {
		return n, err
	}
	f.offset += int64(n)
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Size returns the file's size in bytes, as recorded in its directory
// entry.
func (f *File) Size() int64 { return f.state.fileSize }

// Close is a no-op: a File holds no resource beyond memory.
func (f *File) Close() error { return nil }

// Dir resolves path to a directory and invokes hook once per entry.
// hook may stop the scan early by returning true.
func (d *Driver) Dir(ctx context.Context, path string, hook DirHook) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	st := d.rootState()
	if err := d.vol.resolve(d.bd, &st, path); err != nil {
		return err
	}
	if st.attr&attrDirectory == 0 {
		return badFileType("not a directory: " + path)
	}
	return d.vol.scanDir(d.bd, &st, hook)
}

// Label scans the root directory for the first non-deleted entry whose
// attribute is exactly VOLUME_ID, returning its raw 11-byte name
// untrimmed. It does not honor LFN entries: this is a deliberately raw
// scan. ok is false if no volume-ID entry exists.
func (d *Driver) Label() (label string, ok bool, err error) {
	st := d.rootState()
	var raw [dirEntrySize]byte
	var offset int64
	for {
		n, rerr := d.vol.readData(d.bd, &st, nil, offset, raw[:])
		if rerr != nil {
			return "", false, rerr
		}
		if n < dirEntrySize || raw[0] == 0x00 {
			return "", false, nil
		}
		offset += dirEntrySize
		if raw[0] == deletedMark {
			continue
		}
		if raw[11] == attrVolumeID {
			return string(raw[0:11]), true, nil
		}
	}
}

// Trimmed strips trailing spaces from a raw label, as a convenience;
// Label itself keeps them.
func Trimmed(label string) string {
	end := len(label)
	for end > 0 && label[end-1] == ' ' {
		end--
	}
	return label[:end]
}
