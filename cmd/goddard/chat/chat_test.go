package chatcmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	chatcmder "github.com/jlud7/goddard-gui/cmd/goddard/chat"
)

var _ = Describe("NewChatCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := chatcmder.NewChatCmd()
		Expect(cmd.Use).To(Equal("chat"))
	})

	It("has --model flag with shorthand", func() {
		cmd := chatcmder.NewChatCmd()
		flag := cmd.Flags().Lookup("model")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(Equal("m"))
	})

	It("has --gateway flag with default value", func() {
		cmd := chatcmder.NewChatCmd()
		flag := cmd.Flags().Lookup("gateway")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(Equal("g"))
		Expect(flag.DefValue).To(Equal("http://localhost:18789"))
	})

	It("has --token flag without shorthand", func() {
		cmd := chatcmder.NewChatCmd()
		flag := cmd.Flags().Lookup("token")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(BeEmpty())
	})
})
