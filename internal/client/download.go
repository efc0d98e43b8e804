package client

import (
	"context"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/subseek/subseek/internal/models"
)

// Download fetches a subtitle payload. The bytes are returned undecoded;
// the file name comes from Content-Disposition or, failing that, the URL path.
func (r *Requester) Download(ctx context.Context, rawURL string, header http.Header) (*models.DownloadedSubtitle, error) {
	resp, err := r.Do(ctx, Request{Op: "download", Method: http.MethodGet, URL: rawURL, Header: header})
	if err != nil {
		return nil, err
	}

	return &models.DownloadedSubtitle{
		Content:     resp.Body,
		FileName:    fileNameFromResponse(resp),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func fileNameFromResponse(resp *Response) string {
	if disposition := resp.Header.Get("Content-Disposition"); disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := strings.TrimSpace(params["filename"]); name != "" {
				return path.Base(strings.ReplaceAll(name, `\`, "/"))
			}
		}
	}

	u, err := url.Parse(resp.FinalURL)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || path.Ext(name) == "" {
		return ""
	}
	return name
}
