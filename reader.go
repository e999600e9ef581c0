package fatfs

// deviceRead installs hook for the duration of exactly one physical
// read: nested FAT lookups made while walking the chain are never
// observed as file content.
func (v *Volume) deviceRead(bd BlockDevice, hook ReadHook, sector uint32, offset, length int, dst []byte) error {
	if hook != nil {
		bd.SetReadHook(hook)
		defer bd.SetReadHook(nil)
	}
	if err := bd.ReadAt(sector, offset, length, dst); err != nil {
		return deviceErr(err)
	}
	return nil
}

// readData serves read(offset, len(buf)) against the entry in st,
// returning the number of bytes actually delivered. It never errors on
// a short read at true end-of-chain; that is a legitimate outcome, not
// a failure.
func (v *Volume) readData(bd BlockDevice, st *entryState, hook ReadHook, offset int64, buf []byte) (int, error) {
	if st.fileCluster.IsFixedRoot() {
		avail := int64(v.NumRootSectors)*512 - offset
		if avail <= 0 {
			return 0, nil
		}
		size := int64(len(buf))
		if size > avail {
			size = avail
		}
		if size <= 0 {
			return 0, nil
		}
		if err := v.deviceRead(bd, hook, v.RootSector, int(offset), int(size), buf[:size]); err != nil {
			return 0, err
		}
		return int(size), nil
	}

	bShift := v.ClusterBits + v.LogicalSectorBits + 9
	clusterSize := int64(1) << bShift
	targetLC := uint32(offset >> bShift)
	intraOffset := int(offset & (clusterSize - 1))

	if !st.cur.valid || targetLC < st.cur.logical {
		st.cur = cursor{valid: true, logical: 0, phys: st.fileCluster.Cluster()}
	}

	var total int
	remaining := len(buf)
	bufPos := 0
	for remaining > 0 {
		for targetLC > st.cur.logical {
			next, eof, err := v.walkNext(bd, st.cur.phys)
			if err != nil {
				return total, err
			}
			if eof {
				return total, nil
			}
			st.cur.phys = next
			st.cur.logical++
		}

		sector := v.ClusterSector + ((st.cur.phys - 2) << (v.ClusterBits + v.LogicalSectorBits))
		chunk := remaining
		if maxChunk := int(clusterSize) - intraOffset; chunk > maxChunk {
			chunk = maxChunk
		}
		if err := v.deviceRead(bd, hook, sector, intraOffset, chunk, buf[bufPos:bufPos+chunk]); err != nil {
			return total, err
		}

		total += chunk
		bufPos += chunk
		remaining -= chunk
		targetLC++
		intraOffset = 0
	}
	return total, nil
}
