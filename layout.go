package fatfs

// On-disk struct definitions. Field offsets and widths are the wire
// contract: little-endian, packed, decoded explicitly rather than
// relied upon via memory layout. restruct.Unpack walks these field by
// field in declaration order against a little-endian byte order, so the
// struct's field order must exactly match the on-disk layout.

// biosParamBlock covers the 36-byte common prefix of the BPB that is
// identical across FAT12, FAT16 and FAT32 boot sectors, plus the
// FAT32-only extended fields (52 bytes in all) that occupy the same
// bytes the FAT12/16 layout spends on legacy BS fields the driver never
// reads. The
// extended fields are only interpreted when sectorsPerFAT16 is zero.
type biosParamBlock struct {
	JmpBoot           [3]byte
	OEMName           [8]byte
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	RootEntryCount    uint16
	TotalSectors16    uint16
	Media             uint8
	SectorsPerFAT16   uint16
	SectorsPerTrack   uint16
	NumHeads          uint16
	HiddenSectors     uint32
	TotalSectors32    uint32
	SectorsPerFAT32   uint32
	ExtFlags          uint16
	FSVersion         uint16
	RootCluster32     uint32
	FSInfoSector      uint16
	BackupBootSector  uint16
}

const bpbDecodeSize = 52 // bytes actually unpacked into biosParamBlock
const bpbReadSize = 90   // bytes read from logical sector 0

// dirEntry is a 32-byte short (8.3) directory record.
type dirEntry struct {
	Name            [11]byte
	Attr            uint8
	NTReserved      uint8
	CreateTimeTenth uint8
	CreateTime      uint16
	CreateDate      uint16
	AccessDate      uint16
	FirstClusterHi  uint16
	WriteTime       uint16
	WriteDate       uint16
	FirstClusterLo  uint16
	FileSize        uint32
}

const dirEntrySize = 32

// lfnEntry is a 32-byte VFAT long-name slot, distinguished from a short
// entry by Attr == attrLongName (0x0F) at the same byte offset dirEntry
// uses for its own Attr field.
type lfnEntry struct {
	Ord             uint8
	Name1           [5]uint16
	Attr            uint8
	Type            uint8
	Checksum        uint8
	Name2           [6]uint16
	FirstClusterLow uint16
	Name3           [2]uint16
}

const (
	attrReadOnly  = 0x01
	attrHidden    = 0x02
	attrSystem    = 0x04
	attrVolumeID  = 0x08
	attrDirectory = 0x10
	attrArchive   = 0x20

	attrLongName = attrReadOnly | attrHidden | attrSystem | attrVolumeID
	attrValid    = attrReadOnly | attrHidden | attrSystem | attrDirectory | attrArchive

	deletedMark    = 0xE5
	deletedEscape  = 0x05
	lastLFNOrdFlag = 0x40
)
