package fakebackend

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// SearchResponse is the envelope returned by the search endpoints.
type SearchResponse struct {
	Results []Document `json:"results"`
}

// ProbeRequest is the body of POST /search/test.
type ProbeRequest struct {
	Field string `json:"field"`
}

// ProbeResponse echoes the probed field.
type ProbeResponse struct {
	Status    string `json:"status"`
	Field     string `json:"field"`
	RequestID string `json:"request_id"`
}

// modeSearchHandler serves GET /search/{mode}?q=&page=&limit=.
func (s *Server) modeSearchHandler(mode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		if strings.TrimSpace(query) == "" {
			SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "query parameter 'q' is required")
			return
		}

		page, ok := intParam(c, "page", 1)
		if !ok {
			return
		}
		limit, ok := intParam(c, "limit", defaultGenericLimit)
		if !ok {
			return
		}

		docs := paginate(s.lookup(mode, query), page, limit)
		c.JSON(http.StatusOK, SearchResponse{Results: docs})
	}
}

// genericSearchHandler serves GET /search?q=&year=&page=&limit=.
func (s *Server) genericSearchHandler(c *gin.Context) {
	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "query parameter 'q' is required")
		return
	}

	page, ok := intParam(c, "page", 1)
	if !ok {
		return
	}
	limit, ok := intParam(c, "limit", defaultGenericLimit)
	if !ok {
		return
	}

	docs := s.lookup(genericMode, query)
	if year := c.Query("year"); year != "" {
		filtered := docs[:0:0]
		for _, d := range docs {
			if strings.HasPrefix(d.Date, year) {
				filtered = append(filtered, d)
			}
		}
		docs = filtered
	}
	docs = paginate(docs, page, limit)

	if s.bareGeneric {
		c.JSON(http.StatusOK, docs)
		return
	}
	c.JSON(http.StatusOK, SearchResponse{Results: docs})
}

// expansionsHandler serves GET <expansion path>?q=.
func (s *Server) expansionsHandler(c *gin.Context) {
	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "query parameter 'q' is required")
		return
	}

	s.mu.Lock()
	suggestions, ok := s.expansions[normalize(query)]
	s.mu.Unlock()
	if !ok {
		suggestions = []string{}
	}
	c.JSON(http.StatusOK, suggestions)
}

// probeHandler serves POST /search/test.
func (s *Server) probeHandler(c *gin.Context) {
	var req ProbeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON, "invalid JSON body: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, ProbeResponse{
		Status:    "ok",
		Field:     req.Field,
		RequestID: c.GetString(requestIDKey),
	})
}

// lookup returns the documents registered for query, falling back to the
// term index when enabled.
func (s *Server) lookup(mode, query string) []Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalize(query)
	if docs, ok := s.corpus[mode][key]; ok {
		return append([]Document(nil), docs...)
	}
	idx, ok := s.indexes[mode]
	if !s.termMatch || !ok {
		return []Document{}
	}

	docs, err := idx.search(key, mode == modeKey(PathTFIDF))
	if err != nil {
		slog.Warn("fake_backend_search_failed", slog.String("query", query), slog.String("error", err.Error()))
		return []Document{}
	}
	return docs
}

func paginate(docs []Document, page, limit int) []Document {
	if page-1 >= (len(docs)+limit-1)/limit {
		return []Document{}
	}
	start := (page - 1) * limit
	end := start + limit
	if end > len(docs) {
		end = len(docs)
	}
	return docs[start:end]
}

// intParam parses a positive integer query parameter, answering 400 on
// garbage.
func intParam(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest,
			"query parameter '"+name+"' must be a positive integer",
			ErrorDetail{Field: name, Message: "got " + strconv.Quote(raw)})
		return 0, false
	}
	return n, true
}

func newBodyReader(raw []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(raw))
}
