package jobscmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	jobscmder "github.com/jlud7/goddard-gui/cmd/goddard/jobs"
)

var _ = Describe("NewJobsCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := jobscmder.NewJobsCmd()
		Expect(cmd.Use).To(Equal("jobs"))
	})

	It("has run, enable, and disable subcommands", func() {
		cmd := jobscmder.NewJobsCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("run", "enable", "disable"))
	})

	It("exposes connection flags to subcommands", func() {
		cmd := jobscmder.NewJobsCmd()
		Expect(cmd.PersistentFlags().Lookup("gateway")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("token")).NotTo(BeNil())
	})

	It("requires an id for run", func() {
		cmd := jobscmder.NewJobsCmd()
		cmd.SetArgs([]string{"run"})
		err := cmd.Execute()
		Expect(err).To(HaveOccurred())
	})
})
