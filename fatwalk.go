package fatfs

import "encoding/binary"

// nextCluster reads the FAT entry for cur and returns the raw stored
// value, decoded per variant width. It does not interpret the value;
// walkNext applies the end-of-chain and corruption checks.
func (v *Volume) nextCluster(bd BlockDevice, cur uint32) (uint32, error) {
	var fatOffset uint32
	var width int
	switch v.FATSize {
	case 32:
		fatOffset = cur * 4
		width = 4
	case 16:
		fatOffset = cur * 2
		width = 2
	default: // 12
		fatOffset = cur + cur/2
		width = 2
	}

	var buf [4]byte
	if err := bd.ReadAt(v.FATSector, int(fatOffset), width, buf[:width]); err != nil {
		return 0, deviceErr(err)
	}

	switch v.FATSize {
	case 32:
		return binary.LittleEndian.Uint32(buf[:4]) & 0x0FFFFFFF, nil
	case 16:
		return uint32(binary.LittleEndian.Uint16(buf[:2])), nil
	default: // 12
		raw := binary.LittleEndian.Uint16(buf[:2])
		if cur&1 != 0 {
			raw >>= 4
		}
		return uint32(raw) & 0x0FFF, nil
	}
}

// walkNext advances one cluster in the chain starting at cur. eof is
// true when the chain legitimately ends here (not an error); err is a
// CORRUPT *Error when the FAT holds an out-of-range index.
func (v *Volume) walkNext(bd BlockDevice, cur uint32) (next uint32, eof bool, err error) {
	next, err = v.nextCluster(bd, cur)
	if err != nil {
		return 0, false, err
	}
	if next >= v.ClusterEOFMark {
		return 0, true, nil
	}
	if next < 2 || next >= v.NumClusters {
		return 0, false, corrupt(next)
	}
	return next, false, nil
}
