package fatfs

// ClusterRef is the starting-cluster reference threaded through the
// current file/directory state. It carries one of two distinct
// meanings: either the entry is the FAT12/16 fixed root directory (not
// cluster-addressed at all), or it starts at an ordinary cluster
// number: the BPB's root cluster (normally 2) for a FAT32 root, any
// valid cluster for anything else.
type ClusterRef struct {
	fixed   bool
	cluster uint32
}

// fixedRoot builds the FAT12/16 "root lives in the fixed root area"
// reference.
func fixedRoot() ClusterRef { return ClusterRef{fixed: true} }

// atCluster builds an ordinary cluster-addressed reference.
func atCluster(c uint32) ClusterRef { return ClusterRef{cluster: c} }

// IsFixedRoot reports whether this reference is the FAT12/16 fixed root
// directory, which is read directly from RootSector rather than walked
// as a cluster chain.
func (r ClusterRef) IsFixedRoot() bool { return r.fixed }

// Cluster returns the starting cluster number. Only meaningful when
// IsFixedRoot is false.
func (r ClusterRef) Cluster() uint32 { return r.cluster }

// cursor marks "no valid position yet, force a cold restart at
// file_cluster" as its own two-variant value, so an invalid cursor can
// never be confused with a cursor legitimately parked at logical
// cluster 0.
type cursor struct {
	valid   bool
	logical uint32
	phys    uint32
}

func invalidCursor() cursor { return cursor{} }

// entryState is the current file/directory state: everything the
// resolver mutates as it walks a path, and everything the positional
// reader needs to serve a read against whichever entry is currently
// active.
type entryState struct {
	attr        uint8
	fileSize    int64
	fileCluster ClusterRef
	cur         cursor
}
