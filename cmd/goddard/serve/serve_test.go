package servecmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	servecmder "github.com/jlud7/goddard-gui/cmd/goddard/serve"
)

var _ = Describe("NewServeCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := servecmder.NewServeCmd()
		Expect(cmd.Use).To(Equal("serve"))
	})

	It("has --listen flag with the default panel address", func() {
		cmd := servecmder.NewServeCmd()
		flag := cmd.Flags().Lookup("listen")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(Equal("l"))
		Expect(flag.DefValue).To(Equal(":8776"))
	})

	It("has --gateway flag with the default gateway URL", func() {
		cmd := servecmder.NewServeCmd()
		flag := cmd.Flags().Lookup("gateway")
		Expect(flag).NotTo(BeNil())
		Expect(flag.DefValue).To(Equal("http://localhost:18789"))
	})

	It("has events publishing flags", func() {
		cmd := servecmder.NewServeCmd()
		Expect(cmd.Flags().Lookup("events-brokers")).NotTo(BeNil())
		topic := cmd.Flags().Lookup("events-topic")
		Expect(topic).NotTo(BeNil())
		Expect(topic.DefValue).To(Equal("goddard.audit"))
	})

	It("has --mcp flag defaulting to off", func() {
		cmd := servecmder.NewServeCmd()
		flag := cmd.Flags().Lookup("mcp")
		Expect(flag).NotTo(BeNil())
		Expect(flag.DefValue).To(Equal("false"))
	})
})
