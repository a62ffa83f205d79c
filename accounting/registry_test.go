package accounting

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Registry", func() {
	var r *Registry

	BeforeEach(func() {
		r = NewRegistry()
	})

	It("should look up counters by thread", func() {
		c := r.CreateForThread(7)

		found, ok := r.Lookup(7)
		Expect(ok).To(BeTrue())
		Expect(found).To(BeIdenticalTo(c))
		Expect(found.ThreadID).To(Equal(uint32(7)))

		_, ok = r.Lookup(8)
		Expect(ok).To(BeFalse())
	})

	It("should keep old counters when a thread ID is reused", func() {
		first := r.CreateForThread(1)
		second := r.CreateForThread(1)

		found, _ := r.Lookup(1)
		Expect(found).To(BeIdenticalTo(second))
		Expect(r.All()).To(Equal([]*PageCounters{first, second}))
	})

	It("should keep the counters of a released thread", func() {
		c := r.CreateForThread(3)

		r.Release(3)

		_, ok := r.Lookup(3)
		Expect(ok).To(BeFalse())
		Expect(r.All()).To(Equal([]*PageCounters{c}))
		Expect(r.Len()).To(Equal(1))
	})

	It("should ignore the release of an unknown thread", func() {
		c := r.CreateForThread(3)

		r.Release(4)

		found, ok := r.Lookup(3)
		Expect(ok).To(BeTrue())
		Expect(found).To(BeIdenticalTo(c))
	})

	It("should return a copy of the list", func() {
		r.CreateForThread(1)

		all := r.All()
		all[0] = nil

		Expect(r.All()[0]).NotTo(BeNil())
	})

	It("should register threads concurrently", func() {
		var wg sync.WaitGroup

		for i := 0; i < 64; i++ {
			wg.Add(1)

			go func(id uint32) {
				defer wg.Done()

				c := r.CreateForThread(id)
				c.Record(uint64(id)*4096, false, false)
			}(uint32(i))
		}

		wg.Wait()

		Expect(r.Len()).To(Equal(64))
		for i := uint32(0); i < 64; i++ {
			c, ok := r.Lookup(i)
			Expect(ok).To(BeTrue())
			Expect(c.ReadWithoutCache).To(HaveKeyWithValue(uint64(i), uint64(1)))
		}
	})
})
