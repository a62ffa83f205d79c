package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Directory", func() {
	var (
		directory *DirectoryImpl
	)

	BeforeEach(func() {
		directory = NewDirectory(1024, 4, 64, NewLRUVictimFinder())
	})

	It("should be able to get total size", func() {
		Expect(directory.TotalSize()).To(Equal(uint64(262144)))
	})

	It("should map line indexes to sets", func() {
		_, setID := directory.GetSet(0x40)
		Expect(setID).To(Equal(1))

		_, setID = directory.GetSet(1024 * 64)
		Expect(setID).To(Equal(0))
	})

	It("should compute the tag above the set index", func() {
		Expect(directory.Tag(0x40)).To(Equal(uint64(0)))
		Expect(directory.Tag(1024 * 64)).To(Equal(uint64(1)))
		Expect(directory.Tag(3*1024*64 + 0x7f)).To(Equal(uint64(3)))
	})

	It("should lookup", func() {
		set, _ := directory.GetSet(0x100)
		set.Blocks[2].Tag = directory.Tag(0x100)
		set.Blocks[2].IsValid = true

		block, ok := directory.Lookup(0x100)

		Expect(ok).To(BeTrue())
		Expect(block).To(BeIdenticalTo(set.Blocks[2]))
	})

	It("should not find a block when the cache is empty", func() {
		block, ok := directory.Lookup(0x100)

		Expect(ok).To(BeFalse())
		Expect(block).To(BeNil())
	})

	It("should not return invalid blocks", func() {
		set, _ := directory.GetSet(0x100)
		set.Blocks[0].Tag = directory.Tag(0x100)
		set.Blocks[0].IsValid = false

		_, ok := directory.Lookup(0x100)

		Expect(ok).To(BeFalse())
	})

	It("should not match a different tag in the same set", func() {
		set, _ := directory.GetSet(0x100)
		set.Blocks[0].Tag = directory.Tag(0x100) + 1
		set.Blocks[0].IsValid = true

		_, ok := directory.Lookup(0x100)

		Expect(ok).To(BeFalse())
	})

	It("should update LRU queue when visiting a block", func() {
		set, _ := directory.GetSet(0x100)

		directory.Visit(set.Blocks[1])

		Expect(set.LRUQueue).To(Equal([]int{0, 2, 3, 1}))
	})

	It("should not keep the LRU queue for round-robin sets", func() {
		rr := NewDirectory(1024, 4, 64, NewRoundRobinVictimFinder())
		set, _ := rr.GetSet(0x100)

		rr.Visit(set.Blocks[1])

		Expect(set.LRUQueue).To(Equal([]int{0, 1, 2, 3}))
	})

	It("should invalidate everything on reset", func() {
		set, _ := directory.GetSet(0x100)
		set.Blocks[0].IsValid = true
		set.NextVictim = 3

		directory.Reset()

		set, _ = directory.GetSet(0x100)
		Expect(set.Blocks[0].IsValid).To(BeFalse())
		Expect(set.NextVictim).To(Equal(0))
	})
})
