package cache

// AccessType tells if an access reads or writes memory.
type AccessType int

// All the access types.
const (
	AccessTypeLoad AccessType = iota
	AccessTypeStore
)

func (t AccessType) String() string {
	switch t {
	case AccessTypeLoad:
		return "load"
	case AccessTypeStore:
		return "store"
	default:
		return "unknown"
	}
}

// A Block of a cache is the information that is associated with a cache line.
// Only the tag is tracked, the data is never modeled.
type Block struct {
	Tag     uint64
	SetID   int
	WayID   int
	IsValid bool
	IsDirty bool
}

// A Set is a list of blocks where a certain piece memory can be stored at.
type Set struct {
	Blocks     []*Block
	LRUQueue   []int
	NextVictim int
}

// A Directory stores the tags of a cache and decides where a cache line
// lives.
type Directory interface {
	Lookup(addr uint64) (*Block, bool)
	FindVictim(addr uint64) *Block
	Visit(block *Block)
	GetSet(addr uint64) (set *Set, setID int)
	Tag(addr uint64) uint64
	Reset()
	TotalSize() uint64
	NumSets() int
	NumWays() int
	BlockSize() int
}

// DirectoryImpl is the default Directory implementation.
type DirectoryImpl struct {
	numSets      int
	numWays      int
	blockSize    int
	Sets         []Set
	victimFinder VictimFinder
	keepsLRU     bool
}

// NewDirectory returns a directory with all the blocks invalid.
func NewDirectory(
	numSets, numWays, blockSize int,
	victimFinder VictimFinder,
) *DirectoryImpl {
	d := &DirectoryImpl{
		numSets:      numSets,
		numWays:      numWays,
		blockSize:    blockSize,
		victimFinder: victimFinder,
	}

	_, d.keepsLRU = victimFinder.(recencyRanked)

	d.Reset()

	return d
}

// NumSets returns the number of sets.
func (d *DirectoryImpl) NumSets() int {
	return d.numSets
}

// NumWays returns the number of blocks in each set.
func (d *DirectoryImpl) NumWays() int {
	return d.numWays
}

// BlockSize returns the number of bytes in a cache line.
func (d *DirectoryImpl) BlockSize() int {
	return d.blockSize
}

// TotalSize returns the maximum number of bytes can be stored in the cache.
func (d *DirectoryImpl) TotalSize() uint64 {
	return uint64(d.numSets) * uint64(d.numWays) * uint64(d.blockSize)
}

// Tag returns the part of the line index that is not used to select the set.
func (d *DirectoryImpl) Tag(addr uint64) uint64 {
	return addr / uint64(d.blockSize) / uint64(d.numSets)
}

// GetSet returns the set that a certain address should be stored at.
func (d *DirectoryImpl) GetSet(addr uint64) (set *Set, setID int) {
	setID = int(addr / uint64(d.blockSize) % uint64(d.numSets))
	set = &d.Sets[setID]

	return
}

// Lookup finds the valid block that holds addr.
func (d *DirectoryImpl) Lookup(addr uint64) (*Block, bool) {
	set, _ := d.GetSet(addr)
	tag := d.Tag(addr)

	for _, block := range set.Blocks {
		if block.IsValid && block.Tag == tag {
			return block, true
		}
	}

	return nil, false
}

// FindVictim asks the victim finder which block addr should replace.
func (d *DirectoryImpl) FindVictim(addr uint64) *Block {
	set, _ := d.GetSet(addr)

	return d.victimFinder.FindVictim(set)
}

// Visit moves the block to the end of the LRUQueue. The queue is left alone
// when the victim finder does not rank blocks by use.
func (d *DirectoryImpl) Visit(block *Block) {
	if !d.keepsLRU {
		return
	}

	queue := d.Sets[block.SetID].LRUQueue

	for i, wayID := range queue {
		if wayID == block.WayID {
			copy(queue[i:], queue[i+1:])
			queue[len(queue)-1] = block.WayID

			return
		}
	}
}

// Reset will mark all the blocks in the directory invalid.
func (d *DirectoryImpl) Reset() {
	d.Sets = make([]Set, d.numSets)
	for i := 0; i < d.numSets; i++ {
		for j := 0; j < d.numWays; j++ {
			block := &Block{
				SetID: i,
				WayID: j,
			}

			d.Sets[i].Blocks = append(d.Sets[i].Blocks, block)
			d.Sets[i].LRUQueue = append(d.Sets[i].LRUQueue, j)
		}
	}
}
