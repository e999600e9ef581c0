package fatfs

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWalkNextFollowsChainAndStopsAtEOF(t *testing.T) {
	img, _ := buildFAT1xImage(t, fat1xParams{
		reservedSectors:   1,
		numFATs:           1,
		sectorsPerFAT:     1,
		sectorsPerCluster: 1,
		rootEntryCount:    16,
		totalSectors:      40,
		imgSectors:        40,
		dirArea:           makeShortEntry("CHAIN   TXT", attrArchive, 2, 1024),
		fatEntries:        map[uint32]uint32{2: 3, 3: 0xFFF},
		clusterData:       map[uint32][]byte{},
	})

	vol, err := mountVolume(NewMemoryDevice(img))
	require.NoError(t, err)

	bd := NewMemoryDevice(img)
	next, eof, err := vol.walkNext(bd, 2)
	require.NoError(t, err)
	require.False(t, eof)
	require.EqualValues(t, 3, next)

	_, eof, err = vol.walkNext(bd, 3)
	require.NoError(t, err)
	require.True(t, eof)
}

func TestNextClusterFAT16Width(t *testing.T) {
	var fatBytes [8]byte
	binary.LittleEndian.PutUint16(fatBytes[4:6], 0x1234) // entry 2

	vol := &Volume{FATSize: 16, FATSector: 1}
	bd := NewMemoryDevice(append(make([]byte, sectorSize), fatBytes[:]...))

	next, err := vol.nextCluster(bd, 2)
	require.NoError(t, err)
	require.EqualValues(t, 0x1234, next)
}

func TestNextClusterFAT32Width(t *testing.T) {
	var fatBytes [16]byte
	binary.LittleEndian.PutUint32(fatBytes[8:12], 0xF0001234) // entry 2, top nibble masked off

	vol := &Volume{FATSize: 32, FATSector: 1}
	bd := NewMemoryDevice(append(make([]byte, sectorSize), fatBytes[:]...))

	next, err := vol.nextCluster(bd, 2)
	require.NoError(t, err)
	require.EqualValues(t, 0x00001234, next)
}

func TestWalkNextReportsCorruptionOnOutOfRangeIndex(t *testing.T) {
	img, _ := buildFAT1xImage(t, fat1xParams{
		reservedSectors:   1,
		numFATs:           1,
		sectorsPerFAT:     1,
		sectorsPerCluster: 1,
		rootEntryCount:    16,
		totalSectors:      40,
		imgSectors:        40,
		dirArea:           makeShortEntry("BAD     TXT", attrArchive, 2, 512),
		fatEntries:        map[uint32]uint32{2: 999}, // far past NumClusters
		clusterData:       map[uint32][]byte{},
	})

	vol, err := mountVolume(NewMemoryDevice(img))
	require.NoError(t, err)

	_, _, err = vol.walkNext(NewMemoryDevice(img), 2)
	require.Error(t, err)
	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, KindCorrupt, ferr.Kind)
	require.EqualValues(t, 999, ferr.Cluster)
}
