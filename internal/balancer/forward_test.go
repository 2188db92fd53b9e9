package balancer_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stefanpapad/target-balancer/internal/balancer"
)

var _ = Describe("ForwardRequest", func() {
	var (
		cfg *stubConfig
		lb  *balancer.Balancer
	)

	BeforeEach(func() {
		cfg = &stubConfig{algorithm: "ROUND_ROBIN"}
		lb = balancer.New(cfg, stubResponder{}, testLogger())
	})

	Context("on success", func() {
		It("should relay status, headers and body unchanged", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Upstream", "yes")
				w.WriteHeader(http.StatusCreated)
				io.WriteString(w, "created")
			}))
			defer server.Close()

			req := httptest.NewRequest(http.MethodGet, "http://lb.local/orders", nil)
			resp := lb.ForwardRequest(serverTarget(server), req, "/orders")

			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			Expect(resp.Header.Get("X-Upstream")).To(Equal("yes"))
			Expect(string(resp.Body)).To(Equal("created"))
		})

		It("should forward method, body and rewritten path", func() {
			var (
				gotMethod string
				gotPath   string
				gotBody   string
			)

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotPath = r.URL.Path
				body, _ := io.ReadAll(r.Body)
				gotBody = string(body)
			}))
			defer server.Close()

			req := httptest.NewRequest(http.MethodPost, "http://lb.local/api/orders", strings.NewReader(`{"id":1}`))
			lb.ForwardRequest(serverTarget(server), req, "/orders")

			Expect(gotMethod).To(Equal(http.MethodPost))
			Expect(gotPath).To(Equal("/orders"))
			Expect(gotBody).To(Equal(`{"id":1}`))
		})

		It("should append the inbound query string verbatim", func() {
			var gotQuery string

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.RawQuery
			}))
			defer server.Close()

			req := httptest.NewRequest(http.MethodGet, "http://lb.local/search?q=go&page=2", nil)
			lb.ForwardRequest(serverTarget(server), req, "/search")

			Expect(gotQuery).To(Equal("q=go&page=2"))
		})

		It("should relay redirects without following them", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "http://elsewhere.example/", http.StatusFound)
			}))
			defer server.Close()

			req := httptest.NewRequest(http.MethodGet, "http://lb.local/", nil)
			resp := lb.ForwardRequest(serverTarget(server), req, "/")

			Expect(resp.StatusCode).To(Equal(http.StatusFound))
			Expect(resp.Header.Get("Location")).To(Equal("http://elsewhere.example/"))
		})
	})

	Context("header handling", func() {
		It("should strip hop-by-hop headers regardless of casing", func() {
			var gotHeader http.Header

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotHeader = r.Header.Clone()
			}))
			defer server.Close()

			req := httptest.NewRequest(http.MethodGet, "http://lb.local/", nil)
			req.Header["connection"] = []string{"keep-alive"}
			req.Header["KEEP-ALIVE"] = []string{"timeout=5"}
			req.Header["Transfer-Encoding"] = []string{"chunked"}
			req.Header.Set("X-Request-Id", "abc-123")
			req.Header.Set("Authorization", "Bearer token")

			lb.ForwardRequest(serverTarget(server), req, "/")

			Expect(gotHeader.Values("Connection")).To(BeEmpty())
			Expect(gotHeader.Values("Keep-Alive")).To(BeEmpty())
			Expect(gotHeader.Values("Transfer-Encoding")).To(BeEmpty())
			Expect(gotHeader.Get("X-Request-Id")).To(Equal("abc-123"))
			Expect(gotHeader.Get("Authorization")).To(Equal("Bearer token"))
		})
	})

	Context("on transport failure", func() {
		It("should map a refused connection to 502", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			t := serverTarget(server)
			server.Close()

			req := httptest.NewRequest(http.MethodGet, "http://lb.local/", nil)
			resp := lb.ForwardRequest(t, req, "/")

			Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))
			Expect(string(resp.Body)).To(ContainSubstring("connection error"))
		})

		It("should map a timeout to 504", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(300 * time.Millisecond)
			}))
			defer server.Close()

			cfg.timeout = 30 * time.Millisecond

			req := httptest.NewRequest(http.MethodGet, "http://lb.local/", nil)
			resp := lb.ForwardRequest(serverTarget(server), req, "/")

			Expect(resp.StatusCode).To(Equal(http.StatusGatewayTimeout))
			Expect(string(resp.Body)).To(ContainSubstring("request timeout"))
		})
	})
})
