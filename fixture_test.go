package fatfs

import (
	"encoding/binary"
	"testing"
)

// This file assembles small, byte-exact FAT12/16/32 volumes for the
// other _test.go files to mount and read against: a real (if miniature)
// disk image rather than a mock. Every fixture is sized to cover only
// the sectors its test actually touches; declared geometry
// (TotalSectors, NumFATs' second copy, and so on) is free to claim a
// larger volume than the backing buffer holds, since nothing here reads
// past what a test exercises.

const sectorSize = 512

type layout struct {
	fatSector      uint32
	rootSector     uint32
	numRootSectors uint32
	clusterSector  uint32
}

// calcLayout mirrors mountVolume's own offset arithmetic for a volume
// with BytesPerSector fixed at 512 (logicalSectorBits == 0), so the
// fixture builder knows where to place the root directory and cluster
// data before the image exists to mount and check against.
func calcLayout(reservedSectors, numFATs, sectorsPerFAT, rootEntryCount uint32) layout {
	fatSector := reservedSectors
	rootSector := fatSector + numFATs*sectorsPerFAT
	numRootSectors := (rootEntryCount*dirEntrySize + sectorSize - 1) >> 9
	return layout{
		fatSector:      fatSector,
		rootSector:     rootSector,
		numRootSectors: numRootSectors,
		clusterSector:  rootSector + numRootSectors,
	}
}

// fat1xParams configures a FAT12/16-shaped fixed-root volume. The FAT
// variant follows automatically from numClusters once mounted, exactly
// as it would for a real volume.
type fat1xParams struct {
	reservedSectors   uint16
	numFATs           uint8
	sectorsPerFAT     uint16
	sectorsPerCluster uint8
	rootEntryCount    uint16
	totalSectors      uint16
	media             uint8
	imgSectors        uint32 // backing buffer size; must cover every sector touched
	dirArea           []byte // raw bytes for the fixed root directory, from byte 0
	fatEntries        map[uint32]uint32
	clusterData       map[uint32][]byte
}

func buildFAT1xImage(t *testing.T, p fat1xParams) ([]byte, layout) {
	t.Helper()
	if p.media == 0 {
		p.media = 0xF8
	}
	lay := calcLayout(uint32(p.reservedSectors), uint32(p.numFATs), uint32(p.sectorsPerFAT), uint32(p.rootEntryCount))

	img := make([]byte, int(p.imgSectors)*sectorSize)
	put16 := func(off int, v uint16) { binary.LittleEndian.PutUint16(img[off:], v) }

	img[0], img[1], img[2] = 0xEB, 0x3C, 0x90
	copy(img[3:11], "FATFSTST")
	put16(11, sectorSize)
	img[13] = p.sectorsPerCluster
	put16(14, p.reservedSectors)
	img[16] = p.numFATs
	put16(17, p.rootEntryCount)
	put16(19, p.totalSectors)
	img[21] = p.media
	put16(22, p.sectorsPerFAT)

	fatBytes := packFAT12(t, p.fatEntries, p.media)
	for fat := uint32(0); fat < uint32(p.numFATs); fat++ {
		off := int(p.reservedSectors+uint16(fat)*p.sectorsPerFAT) * sectorSize
		copy(img[off:], fatBytes)
	}

	copy(img[int(lay.rootSector)*sectorSize:], p.dirArea)

	for cluster, data := range p.clusterData {
		sector := lay.clusterSector + (cluster-2)*uint32(p.sectorsPerCluster)
		copy(img[int(sector)*sectorSize:], data)
	}

	return img, lay
}

// packFAT12 lays entries out using the same 1.5-byte packed encoding
// nextCluster decodes: entries 0 and 1 carry the FAT-ID sanity pattern,
// every other entry comes from values.
func packFAT12(t *testing.T, values map[uint32]uint32, media uint8) []byte {
	t.Helper()
	maxCluster := uint32(1)
	for c := range values {
		if c > maxCluster {
			maxCluster = c
		}
	}
	buf := make([]byte, (maxCluster+2)*3/2+4)
	set := func(idx, v uint32) {
		off := idx + idx/2
		cur := binary.LittleEndian.Uint16(buf[off : off+2])
		if idx&1 == 0 {
			cur = cur&^0x0FFF | uint16(v&0xFFF)
		} else {
			cur = cur&^0xFFF0 | uint16((v&0xFFF)<<4)
		}
		binary.LittleEndian.PutUint16(buf[off:], cur)
	}
	set(0, 0xF00|uint32(media))
	set(1, 0xFFF)
	for c, v := range values {
		set(c, v)
	}
	return buf
}

// makeShortEntry builds a raw 32-byte 8.3 directory record. name11 must
// already be the padded 11-byte short name ("HELLO   TXT").
func makeShortEntry(name11 string, attr uint8, cluster, size uint32) []byte {
	if len(name11) != 11 {
		panic("fixture: short name must be 11 bytes")
	}
	raw := make([]byte, dirEntrySize)
	copy(raw[0:11], name11)
	raw[11] = attr
	binary.LittleEndian.PutUint16(raw[20:22], uint16(cluster>>16))
	binary.LittleEndian.PutUint16(raw[26:28], uint16(cluster))
	binary.LittleEndian.PutUint32(raw[28:32], size)
	return raw
}

// makeLFNEntry builds one raw 32-byte VFAT long-name slot. chars holds
// exactly 13 UTF-16 code units, already padded with a NUL terminator
// and 0xFFFF filler per VFAT convention.
func makeLFNEntry(ord uint8, last bool, checksum uint8, chars [13]uint16) []byte {
	raw := make([]byte, dirEntrySize)
	o := ord
	if last {
		o |= lastLFNOrdFlag
	}
	raw[0] = o
	for i := 0; i < 5; i++ {
		binary.LittleEndian.PutUint16(raw[1+i*2:], chars[i])
	}
	raw[11] = attrLongName
	raw[13] = checksum
	for i := 0; i < 6; i++ {
		binary.LittleEndian.PutUint16(raw[14+i*2:], chars[5+i])
	}
	for i := 0; i < 2; i++ {
		binary.LittleEndian.PutUint16(raw[28+i*2:], chars[11+i])
	}
	return raw
}

// fat32Params configures a cluster-addressed FAT32 volume: root lives
// in the cluster area like any other directory.
type fat32Params struct {
	reservedSectors   uint16
	numFATs           uint8
	sectorsPerFAT     uint32
	sectorsPerCluster uint8
	rootCluster       uint32
	totalSectors      uint32
	media             uint8
	imgSectors        uint32
	fatEntries        map[uint32]uint32
	clusterData       map[uint32][]byte
}

type layout32 struct {
	fatSector     uint32
	clusterSector uint32
}

func calcLayout32(reservedSectors, numFATs, sectorsPerFAT uint32) layout32 {
	fatSector := reservedSectors
	return layout32{fatSector: fatSector, clusterSector: fatSector + numFATs*sectorsPerFAT}
}

func buildFAT32Image(t *testing.T, p fat32Params) ([]byte, layout32) {
	t.Helper()
	if p.media == 0 {
		p.media = 0xF8
	}
	lay := calcLayout32(uint32(p.reservedSectors), uint32(p.numFATs), p.sectorsPerFAT)

	img := make([]byte, int(p.imgSectors)*sectorSize)
	put16 := func(off int, v uint16) { binary.LittleEndian.PutUint16(img[off:], v) }
	put32 := func(off int, v uint32) { binary.LittleEndian.PutUint32(img[off:], v) }

	img[0], img[1], img[2] = 0xEB, 0x3C, 0x90
	copy(img[3:11], "FATFSTST")
	put16(11, sectorSize)
	img[13] = p.sectorsPerCluster
	put16(14, p.reservedSectors)
	img[16] = p.numFATs
	put16(17, 0) // RootEntryCount: zero for FAT32
	put16(19, 0) // TotalSectors16: zero, TotalSectors32 carries it
	img[21] = p.media
	put16(22, 0) // SectorsPerFAT16: zero selects the FAT32 branch
	put32(32, p.totalSectors)
	put32(36, p.sectorsPerFAT)
	put32(44, p.rootCluster)

	fatBytes := packFAT32(p.fatEntries, p.media)
	for fat := uint32(0); fat < uint32(p.numFATs); fat++ {
		off := int(uint32(p.reservedSectors)+fat*p.sectorsPerFAT) * sectorSize
		copy(img[off:], fatBytes)
	}

	for cluster, data := range p.clusterData {
		sector := lay.clusterSector + (cluster-2)*uint32(p.sectorsPerCluster)
		copy(img[int(sector)*sectorSize:], data)
	}

	return img, lay
}

// packFAT32 lays entries out 4 bytes each, masked to 28 bits the way
// nextCluster decodes them. Entry 0 carries the FAT-ID sanity pattern.
func packFAT32(values map[uint32]uint32, media uint8) []byte {
	maxCluster := uint32(1)
	for c := range values {
		if c > maxCluster {
			maxCluster = c
		}
	}
	buf := make([]byte, (maxCluster+1)*4+4)
	binary.LittleEndian.PutUint32(buf[0:4], 0x0FFFFF00|uint32(media))
	binary.LittleEndian.PutUint32(buf[4:8], 0x0FFFFFFF)
	for c, v := range values {
		binary.LittleEndian.PutUint32(buf[c*4:c*4+4], v&0x0FFFFFFF)
	}
	return buf
}

// lfnChars13 packs an ASCII slice into a padded 13-unit LFN run.
func lfnChars13(s string) [13]uint16 {
	var out [13]uint16
	i := 0
	for ; i < len(s) && i < 13; i++ {
		out[i] = uint16(s[i])
	}
	if i < 13 {
		out[i] = 0x0000
		i++
	}
	for ; i < 13; i++ {
		out[i] = 0xFFFF
	}
	return out
}
