package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newTestSet(numWays int) *Set {
	set := &Set{}
	for i := 0; i < numWays; i++ {
		set.Blocks = append(set.Blocks, &Block{WayID: i})
		set.LRUQueue = append(set.LRUQueue, i)
	}

	return set
}

var _ = Describe("DirectMappedVictimFinder", func() {
	It("should always pick the only block", func() {
		set := newTestSet(1)
		finder := NewDirectMappedVictimFinder()

		Expect(finder.FindVictim(set)).To(BeIdenticalTo(set.Blocks[0]))
		set.Blocks[0].IsValid = true
		Expect(finder.FindVictim(set)).To(BeIdenticalTo(set.Blocks[0]))
	})
})

var _ = Describe("RoundRobinVictimFinder", func() {
	It("should cycle through the ways in order", func() {
		set := newTestSet(4)
		finder := NewRoundRobinVictimFinder()

		ways := []int{}
		for i := 0; i < 9; i++ {
			ways = append(ways, finder.FindVictim(set).WayID)
		}

		Expect(ways).To(Equal([]int{0, 1, 2, 3, 0, 1, 2, 3, 0}))
	})

	It("should ignore recency", func() {
		set := newTestSet(4)
		finder := NewRoundRobinVictimFinder()
		set.LRUQueue = []int{3, 2, 1, 0}

		Expect(finder.FindVictim(set).WayID).To(Equal(0))
	})
})

var _ = Describe("LRUVictimFinder", func() {
	It("should prefer invalid blocks", func() {
		set := newTestSet(4)
		set.Blocks[0].IsValid = true
		set.Blocks[1].IsValid = true
		finder := NewLRUVictimFinder()

		Expect(finder.FindVictim(set).WayID).To(Equal(2))
	})

	It("should evict the least recently used block", func() {
		set := newTestSet(4)
		for _, b := range set.Blocks {
			b.IsValid = true
		}
		set.LRUQueue = []int{2, 0, 3, 1}
		finder := NewLRUVictimFinder()

		Expect(finder.FindVictim(set).WayID).To(Equal(2))
	})
})
