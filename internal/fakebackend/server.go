// Package fakebackend is an in-process search backend speaking the same HTTP
// contract as the real service. Tests mount it on httptest.NewServer; the
// hidden serve-fake command runs it for local development.
package fakebackend

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Route paths served by the backend.
const (
	PathBoolean           = "/search/boolean"
	PathTFIDF             = "/search/tfidf"
	PathGeneric           = "/search"
	PathProbe             = "/search/test"
	DefaultExpansionPath  = "/search/expansions"
	genericMode           = ""
	requestIDKey          = "request_id"
	maxRequestBodySize    = 1 << 20
	defaultGenericLimit   = 10
	maxRecordedBodyLength = 4096
)

// Document is a search hit as the backend serialises it. Boolean hits carry
// Date, TF-IDF hits carry Score.
type Document struct {
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	URL       string   `json:"url"`
	Sentiment string   `json:"sentiment,omitempty"`
	Date      string   `json:"date,omitempty"`
	Score     *float64 `json:"score,omitempty"`
}

// Request is a recorded incoming request.
type Request struct {
	ID     string
	Method string
	Path   string
	Query  url.Values
	Body   string
}

type override struct {
	status int
	body   string
}

// Server is the fake backend. All setters are safe to call while requests
// are in flight.
type Server struct {
	engine        *gin.Engine
	expansionPath string
	termMatch     bool
	bareGeneric   bool

	mu         sync.Mutex
	corpus     map[string]map[string][]Document // mode -> normalised query -> docs
	indexes    map[string]*termIndex            // mode -> index, with term matching
	expansions map[string][]string
	overrides  map[string]override
	gates      map[string]chan struct{} // path + "?" + query
	requests   []Request
}

// Option configures a Server.
type Option func(*Server)

// WithExpansionPath serves expansions on p instead of /search/expansions.
func WithExpansionPath(p string) Option {
	return func(s *Server) {
		s.expansionPath = p
	}
}

// WithTermMatching answers unknown queries from a full-text index over every
// document of the mode: hits must contain all query terms, and TF-IDF hits
// are ranked and scored by the index.
func WithTermMatching() Option {
	return func(s *Server) {
		s.termMatch = true
	}
}

// WithBareGenericArray makes GET /search answer with a bare JSON array
// instead of a {"results": [...]} envelope.
func WithBareGenericArray() Option {
	return func(s *Server) {
		s.bareGeneric = true
	}
}

// WithDemoCorpus loads the built-in demo documents and enables term matching.
func WithDemoCorpus() Option {
	return func(s *Server) {
		s.termMatch = true
		loadDemoCorpus(s)
	}
}

// New creates a Server with an empty corpus unless options seed one.
func New(opts ...Option) *Server {
	s := &Server{
		expansionPath: DefaultExpansionPath,
		corpus:        make(map[string]map[string][]Document),
		expansions:    make(map[string][]string),
		overrides:     make(map[string]override),
		gates:         make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.termMatch {
		s.indexes = make(map[string]*termIndex)
		for mode, byQuery := range s.corpus {
			for q, docs := range byQuery {
				s.indexDocs(mode, q, docs)
			}
		}
	}
	s.engine = s.setupRoutes()
	return s
}

// indexDocs registers docs with the mode's term index. Must hold mu, or be
// called before the server is shared.
func (s *Server) indexDocs(mode, key string, docs []Document) {
	if s.indexes == nil {
		return
	}
	idx, ok := s.indexes[mode]
	if !ok {
		var err error
		if idx, err = newTermIndex(); err != nil {
			slog.Warn("fake_backend_index_failed", slog.String("mode", mode), slog.String("error", err.Error()))
			return
		}
		s.indexes[mode] = idx
	}
	if err := idx.replace(key, docs); err != nil {
		slog.Warn("fake_backend_index_failed", slog.String("mode", mode), slog.String("error", err.Error()))
	}
}

// Handler returns the HTTP handler serving the backend contract.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestIDMiddleware(), s.recordMiddleware())

	searchRoutes := router.Group("/search")
	{
		searchRoutes.GET("/boolean", s.modeSearchHandler(modeKey(PathBoolean)))
		searchRoutes.GET("/tfidf", s.modeSearchHandler(modeKey(PathTFIDF)))
		searchRoutes.POST("/test", s.probeHandler)
	}
	router.GET(PathGeneric, s.genericSearchHandler)
	router.GET(s.expansionPath, s.expansionsHandler)

	router.NoRoute(func(c *gin.Context) {
		SendError(c, http.StatusNotFound, ErrorCodeNotFound, "no route for "+c.Request.URL.Path)
	})
	return router
}

// SetResults registers the documents returned for query in mode ("boolean",
// "tfidf", or "" for the generic endpoint). Matching is case-insensitive.
func (s *Server) SetResults(mode, query string, docs ...Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.corpus[mode] == nil {
		s.corpus[mode] = make(map[string][]Document)
	}
	key := normalize(query)
	s.corpus[mode][key] = append([]Document(nil), docs...)
	s.indexDocs(mode, key, docs)
}

// SetExpansions registers the suggestions returned for query.
func (s *Server) SetExpansions(query string, suggestions ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expansions[normalize(query)] = append([]string{}, suggestions...)
}

// Respond makes every request to path answer with status and a raw body,
// bypassing the normal handler. Use it for error statuses and malformed bodies.
func (s *Server) Respond(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[path] = override{status: status, body: body}
}

// ClearOverrides removes every Respond override.
func (s *Server) ClearOverrides() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides = make(map[string]override)
}

// Hold blocks requests to path for query until the returned release func is
// called or the client goes away. release is idempotent.
func (s *Server) Hold(path, query string) (release func()) {
	ch := make(chan struct{})
	key := gateKey(path, query)

	s.mu.Lock()
	s.gates[key] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gates[key] == ch {
				delete(s.gates, key)
			}
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Requests returns a copy of every recorded request in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestCount returns how many requests hit path.
func (s *Server) RequestCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

// LastRequest returns the most recent request to path.
func (s *Server) LastRequest(path string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Path == path {
			return s.requests[i], true
		}
	}
	return Request{}, false
}

// requestIDMiddleware tags each request with an ID echoed in error bodies.
func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// recordMiddleware records the request, then applies overrides and holds.
func (s *Server) recordMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodySize)

		var body string
		if c.Request.Method == http.MethodPost {
			raw, _ := c.GetRawData()
			body = string(raw)
			if len(body) > maxRecordedBodyLength {
				body = body[:maxRecordedBodyLength]
			}
			c.Request.Body = newBodyReader(raw)
		}

		path := c.Request.URL.Path
		query := c.Query("q")

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			ID:     c.GetString(requestIDKey),
			Method: c.Request.Method,
			Path:   path,
			Query:  c.Request.URL.Query(),
			Body:   body,
		})
		gate := s.gates[gateKey(path, query)]
		ov, hasOverride := s.overrides[path]
		s.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-c.Request.Context().Done():
				c.Abort()
				return
			}
		}

		if hasOverride {
			c.Data(ov.status, "application/json", []byte(ov.body))
			c.Abort()
			return
		}
		c.Next()
	}
}

func gateKey(path, query string) string {
	return path + "?" + normalize(query)
}

func modeKey(path string) string {
	return strings.TrimPrefix(path, "/search/")
}

func normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
