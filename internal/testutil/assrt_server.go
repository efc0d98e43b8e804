package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// AssrtFile is one entry of a fake assrt subtitle's file list.
type AssrtFile struct {
	Name    string
	Content []byte
}

// AssrtSubtitle is one subtitle served by NewAssrtServer.
type AssrtSubtitle struct {
	ID         int64
	Title      string
	LangDesc   string
	LangList   map[string]bool
	UploadTime string
	SubType    string
	FileName   string
	Content    []byte // served at the primary URL; nil makes the link dead
	Files      []AssrtFile
}

// AssrtServer fakes the assrt search, detail and file endpoints.
type AssrtServer struct {
	*httptest.Server

	subs  map[int64]AssrtSubtitle
	order []int64

	mu    sync.Mutex
	paths []string
}

// NewAssrtServer starts a fake assrt API. Callers must Close it.
func NewAssrtServer(subs []AssrtSubtitle) *AssrtServer {
	s := &AssrtServer{subs: make(map[int64]AssrtSubtitle, len(subs))}
	for _, sub := range subs {
		s.subs[sub.ID] = sub
		s.order = append(s.order, sub.ID)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/sub/search", s.handleSearch)
	mux.HandleFunc("/sub/detail", s.handleDetail)
	mux.HandleFunc("/file/", s.handleFile)
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.paths = append(s.paths, r.URL.Path)
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	return s
}

// Requests returns the request paths received so far.
func (s *AssrtServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

func (s *AssrtServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	type lang struct {
		Desc     string          `json:"desc"`
		LangList map[string]bool `json:"langlist,omitempty"`
	}
	type item struct {
		ID         int64  `json:"id"`
		NativeName string `json:"native_name"`
		UploadTime string `json:"upload_time"`
		SubType    string `json:"subtype"`
		Lang       lang   `json:"lang"`
	}

	items := make([]item, 0, len(s.order))
	for _, id := range s.order {
		sub := s.subs[id]
		items = append(items, item{
			ID:         sub.ID,
			NativeName: sub.Title,
			UploadTime: sub.UploadTime,
			SubType:    sub.SubType,
			Lang:       lang{Desc: sub.LangDesc, LangList: sub.LangList},
		})
	}

	writeJSON(w, map[string]any{"status": 0, "sub": map[string]any{"subs": items}})
}

func (s *AssrtServer) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	sub, ok := s.subs[id]
	if !ok {
		writeJSON(w, map[string]any{"status": 0, "sub": map[string]any{"subs": []any{}}})
		return
	}

	files := make([]map[string]string, 0, len(sub.Files))
	for i, f := range sub.Files {
		files = append(files, map[string]string{
			"url": fmt.Sprintf("%s/file/%d/%d/%s", s.URL, id, i, f.Name),
			"f":   f.Name,
			"s":   fmt.Sprintf("%dB", len(f.Content)),
		})
	}

	writeJSON(w, map[string]any{
		"status": 0,
		"sub": map[string]any{"subs": []map[string]any{{
			"id":       id,
			"url":      fmt.Sprintf("%s/file/%d/primary/%s", s.URL, id, sub.FileName),
			"filename": sub.FileName,
			"subtype":  sub.SubType,
			"filelist": files,
		}}},
	})
}

// handleFile serves /file/{id}/primary/{name} and /file/{id}/{index}/{name}.
func (s *AssrtServer) handleFile(w http.ResponseWriter, r *http.Request) {
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/file/"), "/", 3)
	if len(parts) < 2 {
		http.NotFound(w, r)
		return
	}
	id, _ := strconv.ParseInt(parts[0], 10, 64)
	sub, ok := s.subs[id]
	if !ok {
		http.NotFound(w, r)
		return
	}

	var content []byte
	if parts[1] == "primary" {
		content = sub.Content
	} else if i, err := strconv.Atoi(parts[1]); err == nil && i >= 0 && i < len(sub.Files) {
		content = sub.Files[i].Content
	}
	if content == nil {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write(content)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
