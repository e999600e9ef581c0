package fatfs

import "strings"

// resolve drives st through path component by component, scanning each
// directory hop via scanDir and adopting the matching entry as the new
// current state. An empty path (after stripping leading slashes) leaves
// st pointed at whatever it already was: the root, on a freshly mounted
// handle.
func (v *Volume) resolve(bd BlockDevice, st *entryState, path string) error {
	path = strings.TrimLeft(path, "/")

	for path != "" {
		var component, rest string
		if idx := strings.IndexByte(path, '/'); idx < 0 {
			component = path
		} else {
			component = path[:idx]
			rest = strings.TrimLeft(path[idx+1:], "/")
		}

		if st.attr&attrDirectory == 0 {
			return badFileType("not a directory")
		}

		var match DirEntry
		found := false
		err := v.scanDir(bd, st, func(e DirEntry) (bool, error) {
			if e.Name == component {
				match = e
				found = true
				return true, nil
			}
			return false, nil
		})
		if err != nil {
			return err
		}
		if !found {
			return fileNotFound(component)
		}

		st.attr = match.Attr
		st.fileSize = match.Size
		st.fileCluster = atCluster(match.FirstCluster)
		st.cur = invalidCursor()
		path = rest
	}
	return nil
}
