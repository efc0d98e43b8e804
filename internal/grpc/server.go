package grpc

import (
	"context"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/subseek/subseek/internal/acquire"
	"github.com/subseek/subseek/internal/config"
	"github.com/subseek/subseek/internal/parser"
)

// server implements SubtitleServiceServer
type server struct {
	acquirer acquire.Acquirer
	logger   zerolog.Logger
}

// NewServer creates the subtitle service over an acquirer.
func NewServer(a acquire.Acquirer) SubtitleServiceServer {
	return &server{
		acquirer: a,
		logger:   config.GetLogger(),
	}
}

// Acquire implements SubtitleServiceServer.Acquire
func (s *server) Acquire(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	q, err := queryFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	s.logger.Debug().Str("title", q.Title).Int64("tmdbId", q.TMDBID).Msg("Acquire called")

	track, err := s.acquirer.Acquire(ctx, q)
	if err != nil {
		s.logger.Warn().Err(err).Str("title", q.Title).Msg("Acquire failed")
		return nil, toStatus(ctx, acquireMethod, err)
	}

	resp, err := trackToStruct(track)
	if err != nil {
		return nil, toStatus(ctx, acquireMethod, err)
	}
	s.logger.Debug().Str("title", q.Title).Int("cues", len(track.Cues)).Msg("Acquire completed")
	return resp, nil
}

// Parse implements SubtitleServiceServer.Parse
func (s *server) Parse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := parseRequestFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	s.logger.Debug().Str("fileName", in.fileName).Int("size", len(in.content)).Msg("Parse called")

	track := parser.DecodeAndParse(in.content, in.fileName, in.hint)
	resp, err := trackToStruct(&track)
	if err != nil {
		return nil, toStatus(ctx, parseMethod, err)
	}
	return resp, nil
}
