package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/go-fatfs/fatfs"
	"github.com/go-fatfs/fatfs/internal/mbr"
)

func main() {
	app := cli.App{
		Name:  "fatls",
		Usage: "List or dump files on a raw FAT12/16/32 disk image",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "enable debug logging"},
			&cli.BoolFlag{Name: "whole-disk", Usage: "image is a whole MBR-partitioned disk; locate the first FAT partition"},
		},
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "list a directory",
				ArgsUsage: "IMAGE [PATH]",
				Action:    runList,
			},
			{
				Name:      "cat",
				Usage:     "dump a file's contents to stdout",
				ArgsUsage: "IMAGE PATH",
				Action:    runCat,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatls: %s", err)
	}
}

func openDriver(c *cli.Context, imagePath string) (*fatfs.Driver, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	dev := fatfs.NewMemoryDevice(data)

	var opts fatfs.MountOptions
	if c.Bool("verbose") {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if c.Bool("whole-disk") {
		bs, err := mbr.ToBootSector(data)
		if err != nil {
			return nil, fmt.Errorf("read MBR: %w", err)
		}
		pte, _, ok := mbr.FindFirstFAT(bs)
		if !ok {
			return nil, fmt.Errorf("no FAT partition found on disk")
		}
		opts.PartitionOffset = pte.StartLBA()
	}

	return fatfs.Mount(context.Background(), dev, opts)
}

func runList(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: fatls ls IMAGE [PATH]")
	}
	path := "/"
	if c.NArg() >= 2 {
		path = c.Args().Get(1)
	}

	drv, err := openDriver(c, c.Args().Get(0))
	if err != nil {
		return err
	}
	defer drv.Close()

	return drv.Dir(context.Background(), path, func(e fatfs.DirEntry) (bool, error) {
		kind := "-"
		if e.IsDir() {
			kind = "d"
		}
		fmt.Printf("%s %10s %s\n", kind, humanize.Bytes(uint64(e.Size)), e.Name)
		return false, nil
	})
}

func runCat(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: fatls cat IMAGE PATH")
	}

	drv, err := openDriver(c, c.Args().Get(0))
	if err != nil {
		return err
	}
	defer drv.Close()

	f, err := drv.Open(context.Background(), c.Args().Get(1))
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, 32*1024)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			os.Stdout.Write(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
