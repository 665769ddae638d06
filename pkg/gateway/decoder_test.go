package gateway

import (
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// chunkReader yields the stream in fixed, caller-chosen fragments so tests
// can split lines, JSON tokens, and multi-byte characters at arbitrary byte
// boundaries.
type chunkReader struct {
	chunks [][]byte
}

func newChunkReader(chunks ...string) *chunkReader {
	r := &chunkReader{}
	for _, c := range chunks {
		r.chunks = append(r.chunks, []byte(c))
	}
	return r
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	if n < len(r.chunks[0]) {
		r.chunks[0] = r.chunks[0][n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

// drain collects every delta until the stream terminates.
func drain(d *deltaDecoder) ([]string, error) {
	var deltas []string
	for {
		delta, err := d.Next()
		if err == io.EOF {
			return deltas, nil
		}
		if err != nil {
			return deltas, err
		}
		deltas = append(deltas, delta)
	}
}

func deltaLine(content string) string {
	return `data: {"choices":[{"delta":{"content":"` + content + `"}}]}` + "\n"
}

var _ = Describe("deltaDecoder", func() {
	Context("with a well-formed stream", func() {
		It("yields deltas in order and stops at the sentinel", func() {
			d := newDeltaDecoder(newChunkReader(
				"data: {\"choices\":[{\"delta\":{\"content\":\"Hel",
				"lo\"}}]}\n",
				"data: {\"choices\":[{\"delta\":{\"content\":\" world\"}}]}\ndata: [DONE]\n",
			))

			deltas, err := drain(d)
			Expect(err).NotTo(HaveOccurred())
			Expect(deltas).To(Equal([]string{"Hello", " world"}))
		})

		It("keeps returning io.EOF after the sentinel", func() {
			d := newDeltaDecoder(newChunkReader("data: [DONE]\n"))

			_, err := d.Next()
			Expect(err).To(Equal(io.EOF))

			_, err = d.Next()
			Expect(err).To(Equal(io.EOF))
		})

		It("yields no deltas after the sentinel even if bytes follow", func() {
			d := newDeltaDecoder(newChunkReader(
				deltaLine("before") + "data: [DONE]\n" + deltaLine("after"),
			))

			deltas, err := drain(d)
			Expect(err).NotTo(HaveOccurred())
			Expect(deltas).To(Equal([]string{"before"}))
		})

		It("strips trailing carriage returns", func() {
			d := newDeltaDecoder(newChunkReader(
				"data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\r\ndata: [DONE]\r\n",
			))

			deltas, err := drain(d)
			Expect(err).NotTo(HaveOccurred())
			Expect(deltas).To(Equal([]string{"ok"}))
		})
	})

	Context("with arbitrary chunk boundaries", func() {
		It("reassembles deltas regardless of fragmentation", func() {
			stream := deltaLine("Hé") + deltaLine("llo ") + deltaLine("世界") + "data: [DONE]\n"

			// Split the byte stream at every possible boundary, including
			// mid-UTF8-character and mid-JSON-token.
			for i := 0; i <= len(stream); i++ {
				d := newDeltaDecoder(newChunkReader(stream[:i], stream[i:]))

				deltas, err := drain(d)
				Expect(err).NotTo(HaveOccurred())
				Expect(strings.Join(deltas, "")).To(Equal("Héllo 世界"), "split at byte %d", i)
			}
		})

		It("reassembles deltas from single-byte chunks", func() {
			stream := deltaLine("a̐éö̲") + "data: [DONE]\n"
			var chunks []string
			for i := range len(stream) {
				chunks = append(chunks, stream[i:i+1])
			}
			d := newDeltaDecoder(newChunkReader(chunks...))

			deltas, err := drain(d)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.Join(deltas, "")).To(Equal("a̐éö̲"))
		})
	})

	Context("with malformed or irrelevant frames", func() {
		It("skips invalid JSON silently and keeps going", func() {
			d := newDeltaDecoder(newChunkReader(
				"data: not-json\ndata: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n",
			))

			deltas, err := drain(d)
			Expect(err).NotTo(HaveOccurred())
			Expect(deltas).To(Equal([]string{"ok"}))
		})

		It("ignores comments, blank lines, and other field types", func() {
			d := newDeltaDecoder(newChunkReader(
				": keep-alive\n\nevent: message\nid: 7\nretry: 100\n" + deltaLine("ok") + "data: [DONE]\n",
			))

			deltas, err := drain(d)
			Expect(err).NotTo(HaveOccurred())
			Expect(deltas).To(Equal([]string{"ok"}))
		})

		It("treats payloads without the delta field as no delta", func() {
			d := newDeltaDecoder(newChunkReader(
				"data: {\"choices\":[{\"finish_reason\":\"stop\"}]}\n" +
					"data: {\"choices\":[]}\n" +
					"data: {\"usage\":{\"total_tokens\":3}}\n" +
					deltaLine("ok") + "data: [DONE]\n",
			))

			deltas, err := drain(d)
			Expect(err).NotTo(HaveOccurred())
			Expect(deltas).To(Equal([]string{"ok"}))
		})

		It("skips empty content deltas", func() {
			d := newDeltaDecoder(newChunkReader(
				deltaLine("") + deltaLine("ok") + "data: [DONE]\n",
			))

			deltas, err := drain(d)
			Expect(err).NotTo(HaveOccurred())
			Expect(deltas).To(Equal([]string{"ok"}))
		})
	})

	Context("when the stream ends without a sentinel", func() {
		It("ends normally after the last complete line", func() {
			d := newDeltaDecoder(newChunkReader(deltaLine("partial")))

			deltas, err := drain(d)
			Expect(err).NotTo(HaveOccurred())
			Expect(deltas).To(Equal([]string{"partial"}))
		})

		It("decodes a final unterminated data line", func() {
			d := newDeltaDecoder(newChunkReader(
				`data: {"choices":[{"delta":{"content":"tail"}}]}`,
			))

			deltas, err := drain(d)
			Expect(err).NotTo(HaveOccurred())
			Expect(deltas).To(Equal([]string{"tail"}))
		})

		It("ends normally on an empty stream", func() {
			d := newDeltaDecoder(newChunkReader())

			deltas, err := drain(d)
			Expect(err).NotTo(HaveOccurred())
			Expect(deltas).To(BeEmpty())
		})
	})
})
