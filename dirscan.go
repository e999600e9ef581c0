package fatfs

import (
	"encoding/binary"

	"github.com/go-restruct/restruct"
)

// DirEntry is a decoded directory record: the long name if one was
// present and validated, else the normalized 8.3 short name.
type DirEntry struct {
	Name         string
	Attr         uint8
	Size         int64
	FirstCluster uint32
}

// IsDir reports whether the entry is itself a directory.
func (e DirEntry) IsDir() bool { return e.Attr&attrDirectory != 0 }

// DirHook is invoked once per accepted entry during a directory scan.
// Returning stop=true ends the scan early without error.
type DirHook func(DirEntry) (stop bool, err error)

// maxLFNSlots bounds how many 13-code-unit runs a single LFN group can
// carry (id & 0x3F caps at 63, far beyond any name FAT tooling writes;
// 32 slots covers a 416-character name, comfortably more than the
// 255-character ceiling most FAT implementations enforce).
const maxLFNSlots = 32

// scanDir walks st's directory one 32-byte record at a time via the
// positional reader, reassembling VFAT long names as it goes, and
// invokes hook for each accepted short entry.
func (v *Volume) scanDir(bd BlockDevice, st *entryState, hook DirHook) error {
	if st.attr&attrDirectory == 0 {
		return badFileType("not a directory")
	}

	var raw [dirEntrySize]byte
	var unibuf [maxLFNSlots * 13]uint16

	slot, slots, checksum := 0, 0, -1
	var offset int64

	for {
		n, err := v.readData(bd, st, nil, offset, raw[:])
		if err != nil {
			return err
		}
		if n < dirEntrySize || raw[0] == 0x00 {
			return nil // end of directory
		}
		offset += dirEntrySize

		if raw[0] == deletedMark {
			checksum = -1
			continue
		}

		attr := raw[11]
		if attr == attrLongName {
			var lfn lfnEntry
			if err := restruct.Unpack(raw[:], binary.LittleEndian, &lfn); err != nil {
				checksum = -1
				continue
			}
			id := lfn.Ord
			if id&lastLFNOrdFlag != 0 {
				id &^= lastLFNOrdFlag
				slots, slot = int(id), int(id)
				checksum = int(lfn.Checksum)
			}
			if int(id) != slot || slot == 0 || checksum != int(lfn.Checksum) || slot > maxLFNSlots {
				checksum = -1
				continue
			}
			slot--
			copy(unibuf[slot*13:slot*13+5], lfn.Name1[:])
			copy(unibuf[slot*13+5:slot*13+11], lfn.Name2[:])
			copy(unibuf[slot*13+11:slot*13+13], lfn.Name3[:])
			continue
		}

		if attr&^uint8(attrValid) != 0 {
			continue
		}

		if raw[0] == deletedEscape {
			raw[0] = deletedMark
		}

		var short dirEntry
		if err := restruct.Unpack(raw[:], binary.LittleEndian, &short); err != nil {
			checksum = -1
			continue
		}

		var name string
		if checksum != -1 && slot == 0 && slots > 0 && sum8dot3(short.Name[:]) == byte(checksum) {
			name = utf16ToUTF8(unibuf[:slots*13])
		} else {
			name = shortNameToString(short.Name[:])
		}
		checksum = -1

		entry := DirEntry{
			Name:         name,
			Attr:         attr,
			Size:         int64(short.FileSize),
			FirstCluster: uint32(short.FirstClusterHi)<<16 | uint32(short.FirstClusterLo),
		}

		stop, err := hook(entry)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// sum8dot3 computes the checksum LFN slots carry of their associated
// short entry's 11-byte name: a rotate-right-8 fold.
func sum8dot3(name []byte) byte {
	var sum byte
	for _, b := range name {
		sum = (sum>>1 | sum<<7) + b
	}
	return sum
}
