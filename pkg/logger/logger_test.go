package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jlud7/goddard-gui/pkg/logger"
)

var _ = Describe("Logger", func() {
	Describe("New", func() {
		It("creates a default text logger", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf))
			l.Info("hello", "key", "value")

			output := buf.String()
			Expect(output).To(ContainSubstring("hello"))
			Expect(output).To(ContainSubstring("key"))
			Expect(output).To(ContainSubstring("value"))
		})

		It("respects debug level", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithDebug(true))
			l.Debug("debug msg")

			Expect(buf.String()).To(ContainSubstring("debug msg"))
		})

		It("filters debug when not enabled", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithDebug(false))
			l.Debug("hidden")

			Expect(buf.String()).To(BeEmpty())
		})

		It("creates a JSON logger", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
			l.Info("structured", "count", 42)

			var parsed map[string]any
			err := json.Unmarshal(buf.Bytes(), &parsed)
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed["msg"]).To(Equal("structured"))
			Expect(parsed["count"]).To(BeNumerically("==", 42))
		})

		It("creates a pretty logger", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true))
			l.Info("pretty output")

			Expect(buf.String()).To(ContainSubstring("pretty output"))
		})

		It("supports multiple writers", func() {
			var buf1, buf2 bytes.Buffer
			l := logger.New(logger.WithWriters(&buf1, &buf2))
			l.Info("multi")

			Expect(buf1.String()).To(ContainSubstring("multi"))
			Expect(buf2.String()).To(ContainSubstring("multi"))
		})

		It("returns *slog.Logger", func() {
			l := logger.New()
			Expect(l.Handler()).NotTo(BeNil())
		})
	})

	Describe("Multi", func() {
		It("dispatches records to every logger", func() {
			var text, jsonBuf bytes.Buffer
			textLogger := logger.New(logger.WithWriter(&text))
			jsonLogger := logger.New(logger.WithWriter(&jsonBuf), logger.WithJSON(true))

			l := logger.Multi(textLogger, jsonLogger)
			l.Info("fanout", "n", 1)

			Expect(text.String()).To(ContainSubstring("fanout"))
			Expect(jsonBuf.String()).To(ContainSubstring("fanout"))
		})

		It("respects each handler's level independently", func() {
			var debug, info bytes.Buffer
			debugLogger := logger.New(logger.WithWriter(&debug), logger.WithDebug(true))
			infoLogger := logger.New(logger.WithWriter(&info))

			l := logger.Multi(debugLogger, infoLogger)
			l.Debug("debug only")

			Expect(debug.String()).To(ContainSubstring("debug only"))
			Expect(info.String()).To(BeEmpty())
		})

		It("propagates attrs to child handlers", func() {
			var buf bytes.Buffer
			base := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))

			l := logger.Multi(base).With(slog.String("component", "panel"))
			l.Info("tagged")

			Expect(buf.String()).To(ContainSubstring(`"component":"panel"`))
		})
	})
})
