package replay

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Parse", func() {
	It("should parse all the event kinds", func() {
		trace := `
# a tiny program
start 1
R 1 0x1000 0x400000
W 1 4096
end 1
`
		events, err := Parse(strings.NewReader(trace))

		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(Equal([]Event{
			{Kind: EventThreadStart, ThreadID: 1},
			{Kind: EventRead, ThreadID: 1, Address: 0x1000, IP: 0x400000},
			{Kind: EventWrite, ThreadID: 1, Address: 4096},
			{Kind: EventThreadEnd, ThreadID: 1},
		}))
	})

	It("should ignore trailing comments", func() {
		events, err := Parse(strings.NewReader("W 2 0x40 # store\n"))

		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(HaveLen(1))
		Expect(events[0].Address).To(Equal(uint64(0x40)))
	})

	It("should read decimal addresses with leading zeros as decimal", func() {
		events, err := Parse(strings.NewReader("R 0 010"))

		Expect(err).NotTo(HaveOccurred())
		Expect(events[0].Address).To(Equal(uint64(10)))
	})

	DescribeTable("should report the broken line",
		func(trace, message string) {
			_, err := Parse(strings.NewReader(trace))

			Expect(err).To(MatchError(ContainSubstring(message)))
		},
		Entry("unknown event", "start 1\nX 1 0", "line 2: unknown event"),
		Entry("missing address", "R 1", "line 1: R takes 3 to 4 fields"),
		Entry("extra field", "start 1 2", "line 1: start takes 2 to 2"),
		Entry("bad thread", "start -1", `invalid thread id "-1"`),
		Entry("bad address", "\n\nW 1 0xzz", `line 3: invalid address "0xzz"`),
		Entry("bad ip", "W 1 0 ip", `invalid address "ip"`),
	)

	It("should load a file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace.txt")
		Expect(os.WriteFile(path, []byte("start 0\n"), 0o644)).To(Succeed())

		events, err := Load(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(HaveLen(1))
	})

	It("should name the file of a broken trace", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace.txt")
		Expect(os.WriteFile(path, []byte("oops\n"), 0o644)).To(Succeed())

		_, err := Load(path)

		Expect(err).To(MatchError(ContainSubstring("trace.txt: line 1")))
	})
})
