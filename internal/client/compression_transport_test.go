package client

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

func compress(t *testing.T, encoding string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	switch encoding {
	case "gzip":
		w = gzip.NewWriter(&buf)
	case "br":
		w = brotli.NewWriter(&buf)
	case "zstd":
		zw, err := zstd.NewWriter(&buf)
		if err != nil {
			t.Fatalf("Failed to create zstd writer: %v", err)
		}
		w = zw
	default:
		return data
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Failed to compress: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}
	return buf.Bytes()
}

func TestCompressionTransport_Decompresses(t *testing.T) {
	t.Parallel()
	payload := []byte("1\n00:00:01,000 --> 00:00:02,000\n字幕\n")

	for _, encoding := range []string{"gzip", "br", "zstd", ""} {
		t.Run("encoding="+encoding, func(t *testing.T) {
			t.Parallel()
			body := compress(t, encoding, payload)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Accept-Encoding") != "gzip, br, zstd" {
					t.Errorf("Expected Accept-Encoding 'gzip, br, zstd', got %q", r.Header.Get("Accept-Encoding"))
				}
				if encoding != "" {
					w.Header().Set("Content-Encoding", encoding)
				}
				_, _ = w.Write(body)
			}))
			defer server.Close()

			client := &http.Client{Transport: newCompressionTransport(nil, "")}
			resp, err := client.Get(server.URL)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			defer resp.Body.Close()

			got, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("Failed to read body: %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Errorf("Expected %q, got %q", payload, got)
			}
			if resp.Header.Get("Content-Encoding") != "" {
				t.Errorf("Expected Content-Encoding to be removed, got %q", resp.Header.Get("Content-Encoding"))
			}
		})
	}
}

func TestCompressionTransport_Headers(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Seen-UA", r.Header.Get("User-Agent"))
		w.Header().Set("X-Seen-AE", r.Header.Get("Accept-Encoding"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := &http.Client{Transport: newCompressionTransport(nil, "subseek-test/1.0")}

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	req.Header.Set("Accept-Encoding", "identity")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("X-Seen-UA"); got != "subseek-test/1.0" {
		t.Errorf("Expected default user agent, got %q", got)
	}
	if got := resp.Header.Get("X-Seen-AE"); got != "identity" {
		t.Errorf("Expected caller Accept-Encoding to be preserved, got %q", got)
	}
	if req.Header.Get("User-Agent") != "" {
		t.Error("Original request must not be modified")
	}
}

func TestCompressionTransport_UnknownEncodingPassesThrough(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "compress")
		_, _ = w.Write([]byte("raw"))
	}))
	defer server.Close()

	client := &http.Client{Transport: newCompressionTransport(nil, "")}
	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	got, _ := io.ReadAll(resp.Body)
	if string(got) != "raw" || resp.Header.Get("Content-Encoding") != "compress" {
		t.Errorf("Expected unknown encoding to pass through untouched, got %q / %q", got, resp.Header.Get("Content-Encoding"))
	}
}

func TestParseContentEncoding(t *testing.T) {
	t.Parallel()
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"gzip", "gzip"},
		{" GZIP ", "gzip"},
		{"gzip, br", "br"},
		{"identity,zstd ", "zstd"},
	}
	for _, tt := range tests {
		if got := parseContentEncoding(tt.header); got != tt.want {
			t.Errorf("parseContentEncoding(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
