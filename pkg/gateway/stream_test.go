package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newTestClient(baseURL string) *Client {
	client, err := NewClient(Config{
		BaseURL: baseURL,
		Token:   "test-token",
		Model:   "test-model",
	})
	Expect(err).NotTo(HaveOccurred())
	return client
}

var _ = Describe("StreamChat", func() {
	Context("with a streaming upstream", func() {
		var server *httptest.Server

		BeforeEach(func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal("/v1/chat/completions"))
				Expect(r.Header.Get("Authorization")).To(Equal("Bearer test-token"))
				Expect(r.Header.Get("Accept")).To(Equal("text/event-stream"))

				w.Header().Set("Content-Type", "text/event-stream")
				flusher := w.(http.Flusher)
				for _, content := range []string{"Hello", ",", " world"} {
					fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":\"%s\"}}]}\n", content)
					flusher.Flush()
				}
				fmt.Fprint(w, "data: [DONE]\n")
			}))
		})

		AfterEach(func() {
			server.Close()
		})

		It("yields every delta in order then io.EOF", func() {
			client := newTestClient(server.URL)

			stream, err := client.StreamChat(context.Background(), ChatRequest{
				Messages: []Message{{Role: "user", Content: "hi"}},
			})
			Expect(err).NotTo(HaveOccurred())
			defer stream.Close()

			var full strings.Builder
			var deltas []string
			for {
				delta, err := stream.Recv()
				if err == io.EOF {
					break
				}
				Expect(err).NotTo(HaveOccurred())
				deltas = append(deltas, delta)
				full.WriteString(delta)
			}

			Expect(deltas).To(Equal([]string{"Hello", ",", " world"}))
			Expect(full.String()).To(Equal("Hello, world"))
		})

		It("stops delivering deltas after Close", func() {
			client := newTestClient(server.URL)

			stream, err := client.StreamChat(context.Background(), ChatRequest{
				Messages: []Message{{Role: "user", Content: "hi"}},
			})
			Expect(err).NotTo(HaveOccurred())

			delta, err := stream.Recv()
			Expect(err).NotTo(HaveOccurred())
			Expect(delta).To(Equal("Hello"))

			Expect(stream.Close()).To(Succeed())

			_, err = stream.Recv()
			Expect(err).To(Equal(ErrStreamClosed))

			// Close is idempotent.
			Expect(stream.Close()).To(Succeed())
		})

		It("falls back to the configured default model", func() {
			client := newTestClient(server.URL)

			stream, err := client.StreamChat(context.Background(), ChatRequest{
				Messages: []Message{{Role: "user", Content: "hi"}},
			})
			Expect(err).NotTo(HaveOccurred())
			defer stream.Close()

			Expect(client.Model()).To(Equal("test-model"))
		})
	})

	Context("when the upstream fails before streaming", func() {
		It("returns a StatusError carrying the upstream message", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "model is overloaded", http.StatusInternalServerError)
			}))
			defer server.Close()

			client := newTestClient(server.URL)

			stream, err := client.StreamChat(context.Background(), ChatRequest{})
			Expect(stream).To(BeNil())

			var statusErr *StatusError
			Expect(err).To(BeAssignableToTypeOf(statusErr))
			statusErr = err.(*StatusError)
			Expect(statusErr.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(statusErr.Message).To(Equal("model is overloaded"))
		})

		It("returns an error when the gateway is unreachable", func() {
			client := newTestClient("http://127.0.0.1:1")

			_, err := client.StreamChat(context.Background(), ChatRequest{})
			Expect(err).To(HaveOccurred())
		})
	})

	Context("with a caller-supplied client timeout", func() {
		It("keeps a stream open past the request deadline", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				flusher := w.(http.Flusher)
				fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"slow\"}}]}\n")
				flusher.Flush()
				// Outlive the caller's request timeout mid-body.
				time.Sleep(150 * time.Millisecond)
				fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\" burn\"}}]}\n")
				flusher.Flush()
				fmt.Fprint(w, "data: [DONE]\n")
			}))
			defer server.Close()

			client, err := NewClient(Config{
				BaseURL:    server.URL,
				HTTPClient: &http.Client{Timeout: 50 * time.Millisecond},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(client.streamHTTP.Timeout).To(BeZero())

			stream, err := client.StreamChat(context.Background(), ChatRequest{
				Messages: []Message{{Role: "user", Content: "hi"}},
			})
			Expect(err).NotTo(HaveOccurred())
			defer stream.Close()

			var deltas []string
			for {
				delta, err := stream.Recv()
				if err == io.EOF {
					break
				}
				Expect(err).NotTo(HaveOccurred())
				deltas = append(deltas, delta)
			}

			Expect(deltas).To(Equal([]string{"slow", " burn"}))
		})
	})

	Context("when the consumer cancels mid-stream", func() {
		It("aborts the in-flight read", func() {
			blocked := make(chan struct{})
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"first\"}}]}\n")
				w.(http.Flusher).Flush()
				// Hold the stream open until the client cancels.
				<-r.Context().Done()
				close(blocked)
			}))
			defer server.Close()

			client := newTestClient(server.URL)

			ctx, cancel := context.WithCancel(context.Background())
			stream, err := client.StreamChat(ctx, ChatRequest{})
			Expect(err).NotTo(HaveOccurred())
			defer stream.Close()

			delta, err := stream.Recv()
			Expect(err).NotTo(HaveOccurred())
			Expect(delta).To(Equal("first"))

			cancel()

			_, err = stream.Recv()
			Expect(err).To(HaveOccurred())
			Expect(err).NotTo(Equal(io.EOF))

			Eventually(blocked).Should(BeClosed())
		})
	})
})

var _ = Describe("ChatCompletion", func() {
	It("returns the first choice of a non-streaming completion", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/v1/chat/completions"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"model":"test-model","choices":[{"message":{"role":"assistant","content":"pong"},"finish_reason":"stop"}]}`)
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		result, err := client.ChatCompletion(context.Background(), ChatRequest{
			Messages: []Message{{Role: "user", Content: "ping"}},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Content).To(Equal("pong"))
		Expect(result.Model).To(Equal("test-model"))
		Expect(result.StopReason).To(Equal("stop"))
	})

	It("surfaces non-success statuses as StatusError", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "bad request", http.StatusBadRequest)
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		_, err := client.ChatCompletion(context.Background(), ChatRequest{})
		var statusErr *StatusError
		Expect(err).To(BeAssignableToTypeOf(statusErr))
	})
})
