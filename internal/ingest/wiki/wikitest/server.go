// Package wikitest provides an in-process fake of the encyclopedia API for tests.
package wikitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Article is the fake content served for one page title
type Article struct {
	Thumbnail string
	Extract   string
	LeadHTML  string
}

// Server emulates the subset of w/api.php used by the wiki client
type Server struct {
	*httptest.Server

	mu sync.Mutex
	// search maps a search query to the ranked titles it returns
	search   map[string][]string
	articles map[string]Article
	// failing queries or titles answer 500
	failing map[string]bool
	delays  map[string]time.Duration

	requests atomic.Int64
}

// NewServer starts a fake API server. Call Close when done.
func NewServer() *Server {
	s := &Server{
		search:   make(map[string][]string),
		articles: make(map[string]Article),
		failing:  make(map[string]bool),
		delays:   make(map[string]time.Duration),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// AddSearch registers the titles returned for query
func (s *Server) AddSearch(query string, titles ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search[query] = titles
}

// AddArticle registers the content of title
func (s *Server) AddArticle(title string, a Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[title] = a
}

// AddPlayer registers a search hit and article for name under the same title
func (s *Server) AddPlayer(name string, a Article) {
	s.AddSearch(name, name)
	s.AddArticle(name, a)
}

// Fail makes every request mentioning key (a query or title) answer 500
func (s *Server) Fail(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[key] = true
}

// Delay holds every request mentioning key for d before answering
func (s *Server) Delay(key string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[key] = d
}

// Requests returns the number of requests served
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)

	if r.URL.Path != "/w/api.php" {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	key := q.Get("srsearch")
	if key == "" {
		key = q.Get("titles")
	}
	if key == "" {
		key = q.Get("page")
	}

	s.mu.Lock()
	failing := s.failing[key]
	delay := s.delays[key]
	titles := s.search[q.Get("srsearch")]
	article, found := s.articles[key]
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if failing {
		http.Error(w, "upstream failure", http.StatusInternalServerError)
		return
	}

	switch {
	case q.Get("action") == "query" && q.Get("list") == "search":
		hits := make([]map[string]interface{}, 0, len(titles))
		for i, t := range titles {
			hits = append(hits, map[string]interface{}{"title": t, "pageid": i + 1})
		}
		writeJSON(w, map[string]interface{}{
			"query": map[string]interface{}{"search": hits},
		})

	case q.Get("action") == "query":
		writeJSON(w, map[string]interface{}{
			"query": map[string]interface{}{"pages": pages(key, article, found, q.Get("prop"))},
		})

	case q.Get("action") == "parse":
		if !found {
			writeJSON(w, map[string]interface{}{
				"error": map[string]string{"code": "missingtitle", "info": "The page you specified doesn't exist."},
			})
			return
		}
		writeJSON(w, map[string]interface{}{
			"parse": map[string]interface{}{
				"title": key,
				"text":  map[string]string{"*": article.LeadHTML},
			},
		})

	default:
		http.Error(w, "unsupported action", http.StatusBadRequest)
	}
}

func pages(title string, a Article, found bool, prop string) map[string]interface{} {
	if !found {
		return map[string]interface{}{
			"-1": map[string]interface{}{"title": title, "missing": ""},
		}
	}

	p := map[string]interface{}{"pageid": 1, "title": title}
	if strings.Contains(prop, "pageimages") && a.Thumbnail != "" {
		p["thumbnail"] = map[string]interface{}{"source": a.Thumbnail, "width": 500, "height": 600}
	}
	if strings.Contains(prop, "extracts") {
		p["extract"] = a.Extract
	}
	return map[string]interface{}{"1": p}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
