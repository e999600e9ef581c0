// Command fatfuse mounts a raw FAT12/16/32 disk image read-only via
// FUSE, for poking at a volume with ordinary filesystem tools instead
// of this module's own API. It is a demonstration harness, not part of
// the driver itself: the dirNode/fileNode types adapt fatfs.Driver to
// bazil.org/fuse's fs.Node interfaces.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"sync"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"github.com/spf13/cobra"

	"github.com/go-fatfs/fatfs"
	"github.com/go-fatfs/fatfs/internal/mbr"
)

func main() {
	var wholeDisk bool

	root := &cobra.Command{
		Use:   "fatfuse IMAGE MOUNTPOINT",
		Short: "Mount a FAT12/16/32 image read-only via FUSE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], args[1], wholeDisk)
		},
	}
	root.Flags().BoolVar(&wholeDisk, "whole-disk", false, "image is a whole MBR-partitioned disk; locate the first FAT partition")

	if err := root.Execute(); err != nil {
		log.Fatalf("fatfuse: %s", err)
	}
}

func run(imagePath, mountpoint string, wholeDisk bool) error {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	dev := fatfs.NewMemoryDevice(data)

	var opts fatfs.MountOptions
	if wholeDisk {
		bs, err := mbr.ToBootSector(data)
		if err != nil {
			return fmt.Errorf("read MBR: %w", err)
		}
		pte, _, ok := mbr.FindFirstFAT(bs)
		if !ok {
			return fmt.Errorf("no FAT partition found on disk")
		}
		opts.PartitionOffset = pte.StartLBA()
	}

	drv, err := fatfs.Mount(context.Background(), dev, opts)
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	defer drv.Close()

	c, err := fuse.Mount(mountpoint, fuse.ReadOnly(), fuse.FSName("fatfs"))
	if err != nil {
		return fmt.Errorf("fuse mount: %w", err)
	}
	defer c.Close()

	srv := fusefs.New(c, nil)
	root := &dirNode{drv: drv, path: "/"}
	if err := srv.Serve(root); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// dirNode adapts a resolved directory path into a read-only FUSE node.
type dirNode struct {
	drv  *fatfs.Driver
	path string
}

// Root makes dirNode usable as the fs.FS passed to fusefs.Server.Serve;
// called once, on whichever dirNode is handed to Serve as the mount root.
func (d *dirNode) Root() (fusefs.Node, error) {
	return d, nil
}

func (d *dirNode) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0555
	return nil
}

func (d *dirNode) Lookup(ctx context.Context, name string) (fusefs.Node, error) {
	child := path.Join(d.path, name)

	var found fatfs.DirEntry
	ok := false
	err := d.drv.Dir(ctx, d.path, func(e fatfs.DirEntry) (bool, error) {
		if e.Name == name {
			found, ok = e, true
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, translateError(err)
	}
	if !ok {
		return nil, fuse.ENOENT
	}
	if found.IsDir() {
		return &dirNode{drv: d.drv, path: child}, nil
	}
	return &fileNode{drv: d.drv, path: child, size: found.Size}, nil
}

func (d *dirNode) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	var out []fuse.Dirent
	err := d.drv.Dir(ctx, d.path, func(e fatfs.DirEntry) (bool, error) {
		typ := fuse.DT_File
		if e.IsDir() {
			typ = fuse.DT_Dir
		}
		out = append(out, fuse.Dirent{Name: e.Name, Type: typ})
		return false, nil
	})
	return out, translateError(err)
}

// fileNode adapts a resolved file path into a read-only FUSE node. Each
// read opens a fresh fatfs.File: a File's positional cursor is not safe
// for the concurrent reads FUSE may issue against the same inode.
type fileNode struct {
	drv  *fatfs.Driver
	path string
	size int64

	mtx sync.Mutex
}

func (f *fileNode) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = 0444
	a.Size = uint64(f.size)
	return nil
}

func (f *fileNode) ReadAll(ctx context.Context) ([]byte, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	fh, err := f.drv.Open(ctx, f.path)
	if err != nil {
		return nil, translateError(err)
	}
	defer fh.Close()

	buf := make([]byte, fh.Size())
	n := 0
	for n < len(buf) {
		m, err := fh.Read(buf[n:])
		n += m
		if err != nil {
			break
		}
	}
	return buf[:n], nil
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	var ferr *fatfs.Error
	if e, ok := err.(*fatfs.Error); ok {
		ferr = e
	}
	if ferr == nil {
		return err
	}
	switch ferr.Kind {
	case fatfs.KindFileNotFound:
		return fuse.ENOENT
	case fatfs.KindBadFileType:
		return syscall.ENOTDIR
	default:
		return err
	}
}
