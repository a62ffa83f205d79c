package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type namedHookable struct {
	HookableBase
}

func (d *namedHookable) Name() string {
	return "Domain"
}

type recordingHook struct {
	ctxs []HookCtx
}

func (h *recordingHook) Func(ctx HookCtx) {
	h.ctxs = append(h.ctxs, ctx)
}

var _ = Describe("HookableBase", func() {
	var (
		domain *namedHookable
		pos    *HookPos
	)

	BeforeEach(func() {
		domain = &namedHookable{}
		pos = &HookPos{Name: "Access"}
	})

	It("should invoke hooks in order", func() {
		order := []string{}
		first := &recordingHook{}
		domain.AcceptHook(first)
		domain.AcceptHook(HookFunc(func(ctx HookCtx) {
			order = append(order, ctx.Item.(string))
		}))

		domain.InvokeHook(HookCtx{Domain: domain, Pos: pos, Item: "a"})
		domain.InvokeHook(HookCtx{Domain: domain, Pos: pos, Item: "b"})

		Expect(domain.NumHooks()).To(Equal(2))
		Expect(first.ctxs).To(HaveLen(2))
		Expect(first.ctxs[0].Domain.Name()).To(Equal("Domain"))
		Expect(first.ctxs[1].Pos).To(BeIdenticalTo(pos))
		Expect(order).To(Equal([]string{"a", "b"}))
	})

	It("should panic when the same hook is registered twice", func() {
		hook := &recordingHook{}
		domain.AcceptHook(hook)

		Expect(func() { domain.AcceptHook(hook) }).To(Panic())
	})
})
