package fatfs

import (
	"encoding/binary"

	"github.com/go-restruct/restruct"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Volume is the geometry computed once at mount: the consistent set of
// offsets and shifts derived from the BPB, plus the FAT variant. It is
// immutable for the lifetime of a Driver.
type Volume struct {
	LogicalSectorBits uint32
	ClusterBits       uint32
	FATSize           uint8 // 12, 16 or 32
	FATSector         uint32
	SectorsPerFAT     uint32
	Root              ClusterRef
	RootSector        uint32
	NumRootSectors    uint32
	ClusterSector     uint32
	NumClusters       uint32
	ClusterEOFMark    uint32
	NumSectors        uint32
}

// log2Exact returns n such that 1<<n == x, and false if x is not a
// nonzero power of two.
func log2Exact(x uint32) (uint32, bool) {
	if x == 0 {
		return 0, false
	}
	var n uint32
	for x&1 == 0 {
		x >>= 1
		n++
	}
	if x != 1 {
		return 0, false
	}
	return n, true
}

// mountVolume decodes the BPB, validates its invariants, discriminates
// the FAT variant by cluster count, and probes the FAT-ID sanity
// marker. Every invariant violation it can observe is collected before
// failing, so a single BAD_FS carries the full set of problems rather
// than just the first one found.
func mountVolume(bd BlockDevice) (*Volume, error) {
	var raw [bpbReadSize]byte
	if err := bd.ReadAt(0, 0, len(raw), raw[:]); err != nil {
		return nil, deviceErr(err)
	}

	var bpb biosParamBlock
	if err := restruct.Unpack(raw[:bpbDecodeSize], binary.LittleEndian, &bpb); err != nil {
		return nil, badFSWrap(err, "decode BPB")
	}

	var merr *multierror.Error

	logicalSectorBits, ok := log2Exact(uint32(bpb.BytesPerSector))
	if !ok || bpb.BytesPerSector < 512 {
		merr = multierror.Append(merr, errors.Errorf("bytes_per_sector %d is not a power of two >= 512", bpb.BytesPerSector))
	}
	if logicalSectorBits < 9 {
		// BytesPerSector < 512 already reported above; avoid underflow below.
		logicalSectorBits = 9
	}
	logicalSectorBits -= 9

	clusterBitsRaw, ok := log2Exact(uint32(bpb.SectorsPerCluster))
	if !ok {
		merr = multierror.Append(merr, errors.Errorf("sectors_per_cluster %d is not a power of two", bpb.SectorsPerCluster))
	}
	clusterBits := clusterBitsRaw + logicalSectorBits

	if bpb.NumFATs == 0 {
		merr = multierror.Append(merr, errors.New("num_fats is zero"))
	}

	sectorsPerFAT := uint32(bpb.SectorsPerFAT16)
	if sectorsPerFAT == 0 {
		sectorsPerFAT = bpb.SectorsPerFAT32
	}
	sectorsPerFAT <<= logicalSectorBits
	if sectorsPerFAT == 0 {
		merr = multierror.Append(merr, errors.New("sectors_per_fat is zero"))
	}

	numSectors := uint32(bpb.TotalSectors16)
	if numSectors == 0 {
		numSectors = bpb.TotalSectors32
	}
	numSectors <<= logicalSectorBits
	if numSectors == 0 {
		merr = multierror.Append(merr, errors.New("num_sectors is zero"))
	}

	fatSector := uint32(bpb.ReservedSectors) << logicalSectorBits
	if fatSector == 0 {
		merr = multierror.Append(merr, errors.New("fat_sector is zero (num_reserved_sectors is zero)"))
	}

	rootSector := fatSector + uint32(bpb.NumFATs)*sectorsPerFAT
	numerator := uint32(bpb.RootEntryCount)*dirEntrySize + uint32(bpb.BytesPerSector) - 1
	shift := logicalSectorBits + 9
	numRootSectors := (numerator >> shift) << logicalSectorBits

	clusterSector := rootSector + numRootSectors
	var numClusters uint32
	if numSectors > clusterSector {
		numClusters = ((numSectors - clusterSector) >> (clusterBits + logicalSectorBits)) + 2
	}
	if numClusters <= 2 {
		merr = multierror.Append(merr, errors.Errorf("num_clusters %d <= 2", numClusters))
	}

	v := &Volume{
		LogicalSectorBits: logicalSectorBits,
		ClusterBits:       clusterBits,
		FATSector:         fatSector,
		SectorsPerFAT:     sectorsPerFAT,
		RootSector:        rootSector,
		NumRootSectors:    numRootSectors,
		ClusterSector:     clusterSector,
		NumClusters:       numClusters,
		NumSectors:        numSectors,
	}

	// Discrimination is by cluster count only: FAT12 unless there are
	// enough clusters to need FAT16, and FAT16 only kicks in when the
	// BPB actually carries a 16-bit FAT size field.
	switch {
	case numClusters <= 4085+2:
		v.FATSize = 12
		v.ClusterEOFMark = 0x0FF8
		v.Root = fixedRoot()
	case bpb.SectorsPerFAT16 != 0:
		v.FATSize = 16
		v.ClusterEOFMark = 0xFFF8
		v.Root = fixedRoot()
	default:
		v.FATSize = 32
		v.ClusterEOFMark = 0x0FFFFFF8
		v.Root = atCluster(bpb.RootCluster32)

		if bpb.ExtFlags&0x80 != 0 {
			activeFAT := uint32(bpb.ExtFlags & 0xF)
			if activeFAT > uint32(bpb.NumFATs) {
				merr = multierror.Append(merr, errors.Errorf("active FAT index %d exceeds num_fats %d", activeFAT, bpb.NumFATs))
			} else {
				v.FATSector += activeFAT * sectorsPerFAT
			}
		}
		if bpb.RootEntryCount != 0 {
			merr = multierror.Append(merr, errors.New("FAT32 volume has nonzero num_root_entries"))
		}
		if bpb.FSVersion != 0 {
			merr = multierror.Append(merr, errors.New("FAT32 volume has nonzero fs_version"))
		}
	}

	if numSectors <= v.FATSector {
		merr = multierror.Append(merr, errors.Errorf("num_sectors %d <= fat_sector %d", numSectors, v.FATSector))
	}
	if numSectors <= clusterSector {
		merr = multierror.Append(merr, errors.Errorf("num_sectors %d <= cluster_sector %d", numSectors, clusterSector))
	}

	if merr.ErrorOrNil() != nil {
		return nil, &Error{Kind: KindBadFS, Message: "inconsistent FAT BPB", cause: merr}
	}

	var fatIDBuf [4]byte
	if err := bd.ReadAt(v.FATSector, 0, 4, fatIDBuf[:]); err != nil {
		return nil, deviceErr(err)
	}
	firstFAT := binary.LittleEndian.Uint32(fatIDBuf[:])

	var mask, magic uint32
	switch v.FATSize {
	case 32:
		mask, magic = 0x0FFFFFFF, 0x0FFFFF00
	case 16:
		mask, magic = 0x0000FFFF, 0xFF00
	default:
		mask, magic = 0x00000FFF, 0x0F00
	}
	firstFAT &= mask
	if firstFAT != magic|uint32(bpb.Media) {
		return nil, badFS("not a fat filesystem (FAT ID %#x, expected %#x)", firstFAT, magic|uint32(bpb.Media))
	}

	return v, nil
}
