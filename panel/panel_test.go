package panel

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jlud7/goddard-gui/pkg/gateway"
	"github.com/jlud7/goddard-gui/pkg/logger"
)

// fakeGateway is a canned-response Gateway for handler tests. Tool responses
// are keyed by tool name; unlisted tools answer {"ok":false,...}.
type fakeGateway struct {
	mu        sync.Mutex
	responses map[string]string
	lastTool  string
	lastArgs  map[string]any
	lastAuth  string
}

func (f *fakeGateway) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tools/invoke" {
			http.NotFound(w, r)
			return
		}

		var req struct {
			Tool string         `json:"tool"`
			Args map[string]any `json:"args"`
		}
		Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())

		f.mu.Lock()
		f.lastTool = req.Tool
		f.lastArgs = req.Args
		f.lastAuth = r.Header.Get("Authorization")
		resp, ok := f.responses[req.Tool]
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if !ok {
			io.WriteString(w, `{"ok":false,"error":"unknown tool: `+req.Tool+`"}`)
			return
		}
		io.WriteString(w, resp)
	})
}

func (f *fakeGateway) last() (string, map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastTool, f.lastArgs
}

// newTestServer builds a panel Server wired to the given upstream URL.
func newTestServer(upstreamURL string) *Server {
	gw, err := gateway.NewClient(gateway.Config{
		BaseURL: upstreamURL,
		Token:   "test-token",
		Model:   "test-model",
		Logger:  logger.Nop(),
	})
	Expect(err).NotTo(HaveOccurred())

	s, err := NewServer(Config{
		ListenAddr:   ":0",
		GatewayURL:   upstreamURL,
		GatewayToken: "test-token",
		Model:        "test-model",
	}, gw, logger.Nop())
	Expect(err).NotTo(HaveOccurred())
	return s
}

func decodeJSON(resp *http.Response) map[string]any {
	defer resp.Body.Close()
	var got map[string]any
	Expect(json.NewDecoder(resp.Body).Decode(&got)).To(Succeed())
	return got
}

var _ = Describe("Panel API", func() {
	var (
		fake     *fakeGateway
		upstream *httptest.Server
		s        *Server
	)

	BeforeEach(func() {
		fake = &fakeGateway{responses: map[string]string{}}
		upstream = httptest.NewServer(fake.handler())
		s = newTestServer(upstream.URL)
	})

	AfterEach(func() {
		s.Close()
		upstream.Close()
	})

	Describe("GET /healthz", func() {
		It("reports gateway reachability", func() {
			fake.responses["status"] = `{"ok":true,"result":{"state":"running"}}`

			resp, err := s.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			got := decodeJSON(resp)
			Expect(got["status"]).To(Equal("ok"))
			Expect(got["gateway_reachable"]).To(Equal(true))
		})

		It("stays healthy when the gateway is down", func() {
			upstream.Close()

			resp, err := s.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			got := decodeJSON(resp)
			Expect(got["gateway_reachable"]).To(Equal(false))
		})
	})

	Describe("GET /api/sessions", func() {
		It("returns the gateway session list", func() {
			fake.responses["sessions_list"] = `{"ok":true,"result":[
				{"key":"agent:main","label":"main","updated":"2025-12-01T10:00:00Z","size":4096},
				{"key":"agent:ops","label":"ops","updated":"2025-12-01T09:00:00Z","size":1024}
			]}`

			resp, err := s.Test(httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			got := decodeJSON(resp)
			Expect(got["count"]).To(BeNumerically("==", 2))
			sessions := got["sessions"].([]any)
			Expect(sessions[0].(map[string]any)["key"]).To(Equal("agent:main"))
		})

		It("surfaces a gateway tool failure as its message text", func() {
			resp, err := s.Test(httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))

			got := decodeJSON(resp)
			Expect(got["error"]).To(ContainSubstring("unknown tool"))
		})
	})

	Describe("GET /api/sessions/:key", func() {
		It("passes the session key through", func() {
			fake.responses["session_history"] = `{"ok":true,"result":[
				{"role":"user","content":"hi","timestamp":"2025-12-01T10:00:00Z"},
				{"role":"assistant","content":"hello","timestamp":"2025-12-01T10:00:01Z"}
			]}`

			resp, err := s.Test(httptest.NewRequest(http.MethodGet, "/api/sessions/agent%3Amain", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			got := decodeJSON(resp)
			Expect(got["depth"]).To(BeNumerically("==", 2))

			_, args := fake.last()
			Expect(args["key"]).To(Equal("agent:main"))
		})
	})

	Describe("jobs", func() {
		It("lists jobs", func() {
			fake.responses["cron_list"] = `{"ok":true,"result":[
				{"id":"j1","name":"digest","schedule":"0 8 * * *","enabled":true}
			]}`

			resp, err := s.Test(httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(decodeJSON(resp)["count"]).To(BeNumerically("==", 1))
		})

		It("runs a job by id", func() {
			fake.responses["cron_run"] = `{"ok":true,"result":null}`

			resp, err := s.Test(httptest.NewRequest(http.MethodPost, "/api/jobs/j1/run", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			tool, args := fake.last()
			Expect(tool).To(Equal("cron_run"))
			Expect(args["id"]).To(Equal("j1"))
		})

		It("toggles a job", func() {
			fake.responses["cron_toggle"] = `{"ok":true,"result":null}`

			req := httptest.NewRequest(http.MethodPost, "/api/jobs/j1/toggle",
				strings.NewReader(`{"enabled":false}`))
			req.Header.Set("Content-Type", "application/json")

			resp, err := s.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			_, args := fake.last()
			Expect(args["enabled"]).To(Equal(false))
		})
	})

	Describe("memory", func() {
		It("lists memory files", func() {
			fake.responses["memory_list"] = `{"ok":true,"result":[
				{"name":"MEMORY.md","size":2048,"modified":"2025-12-01T10:00:00Z"}
			]}`

			resp, err := s.Test(httptest.NewRequest(http.MethodGet, "/api/memory", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(decodeJSON(resp)["count"]).To(BeNumerically("==", 1))
		})

		It("reads one memory file", func() {
			fake.responses["memory_get"] = `{"ok":true,"result":"# Notes\n\nremember this"}`

			resp, err := s.Test(httptest.NewRequest(http.MethodGet, "/api/memory/MEMORY.md", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			got := decodeJSON(resp)
			Expect(got["content"]).To(ContainSubstring("remember this"))
		})
	})

	Describe("POST /api/tool", func() {
		It("passes an arbitrary tool call through untouched", func() {
			fake.responses["status"] = `{"ok":true,"result":{"uptime":42}}`

			req := httptest.NewRequest(http.MethodPost, "/api/tool",
				strings.NewReader(`{"tool":"status","args":{"verbose":true}}`))
			req.Header.Set("Content-Type", "application/json")

			resp, err := s.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			got := decodeJSON(resp)
			Expect(got["ok"]).To(Equal(true))
			Expect(got["result"].(map[string]any)["uptime"]).To(BeNumerically("==", 42))

			tool, args := fake.last()
			Expect(tool).To(Equal("status"))
			Expect(args["verbose"]).To(Equal(true))
		})

		It("rejects a missing tool name", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/tool", strings.NewReader(`{"args":{}}`))
			req.Header.Set("Content-Type", "application/json")

			resp, err := s.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /", func() {
		It("serves the embedded UI", func() {
			resp, err := s.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(ContainSubstring("text/html"))

			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("goddard"))
		})

		It("wires the chat form to cancel a superseded stream", func() {
			resp, err := s.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(err).NotTo(HaveOccurred())

			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			Expect(err).NotTo(HaveOccurred())

			// A new turn must abort the in-flight fetch so only one stream
			// is ever consumed at a time.
			page := string(body)
			Expect(page).To(ContainSubstring("new AbortController()"))
			Expect(page).To(ContainSubstring("chatAbort.abort()"))
			Expect(page).To(ContainSubstring("signal: abort.signal"))
		})
	})
})
