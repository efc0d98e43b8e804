package grpc

import (
	"encoding/base64"
	"fmt"
	"math"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/subseek/subseek/internal/models"
)

// queryFromStruct reads an Acquire request.
func queryFromStruct(in *structpb.Struct) (models.SearchQuery, error) {
	fields := in.GetFields()
	title := strings.TrimSpace(fields["title"].GetStringValue())
	if title == "" {
		return models.SearchQuery{}, fmt.Errorf("title is required")
	}

	q := models.SearchQuery{Title: title}
	if v, ok := fields["tmdb_id"]; ok {
		n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
		if !isNumber || n.NumberValue < 0 || n.NumberValue != math.Trunc(n.NumberValue) || n.NumberValue > math.MaxInt64 {
			return models.SearchQuery{}, fmt.Errorf("tmdb_id must be a non-negative integer")
		}
		q.TMDBID = int64(n.NumberValue)
	}
	return q, nil
}

type parseRequest struct {
	content  []byte
	fileName string
	hint     string
}

// parseRequestFromStruct reads a Parse request; content is standard base64.
func parseRequestFromStruct(in *structpb.Struct) (parseRequest, error) {
	fields := in.GetFields()
	raw := fields["content"].GetStringValue()
	if raw == "" {
		return parseRequest{}, fmt.Errorf("content is required")
	}
	content, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return parseRequest{}, fmt.Errorf("content is not valid base64: %w", err)
	}
	return parseRequest{
		content:  content,
		fileName: fields["file_name"].GetStringValue(),
		hint:     fields["hint"].GetStringValue(),
	}, nil
}

// trackToStruct renders a track as a response document.
func trackToStruct(track *models.Track) (*structpb.Struct, error) {
	cues := make([]any, 0, len(track.Cues))
	for _, c := range track.Cues {
		cues = append(cues, map[string]any{
			"start_ms": float64(c.StartMs),
			"end_ms":   float64(c.EndMs),
			"text":     c.Text,
		})
	}

	doc := map[string]any{
		"format":   track.Format.String(),
		"encoding": track.Encoding,
		"degraded": track.Degraded,
		"cues":     cues,
		"text":     track.Text,
	}
	optional := map[string]string{
		"provider_id":  track.ProviderID,
		"candidate_id": track.CandidateID,
		"file_name":    track.FileName,
		"language_tag": track.LanguageTag,
	}
	if track.Language != nil {
		optional["language"] = track.Language.String()
	}
	for k, v := range optional {
		if v != "" {
			doc[k] = v
		}
	}
	return structpb.NewStruct(doc)
}
