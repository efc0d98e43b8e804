package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the subtitle service.
const ServiceName = "subseek.v1.SubtitleService"

const (
	acquireMethod = "/" + ServiceName + "/Acquire"
	parseMethod   = "/" + ServiceName + "/Parse"
)

// SubtitleServiceServer is the server API of subseek.v1.SubtitleService.
// Messages are google.protobuf.Struct documents:
//
//	Acquire: {title: string, tmdb_id?: number} -> track
//	Parse:   {content: base64 string, file_name?: string, hint?: string} -> track
//
// A track is {format, encoding, degraded, cues: [{start_ms, end_ms, text}],
// provider_id?, candidate_id?, file_name?, language?}.
type SubtitleServiceServer interface {
	Acquire(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Parse(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterSubtitleServiceServer registers srv on s.
func RegisterSubtitleServiceServer(s grpc.ServiceRegistrar, srv SubtitleServiceServer) {
	s.RegisterService(&subtitleServiceDesc, srv)
}

var subtitleServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SubtitleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Acquire", Handler: unaryHandler(acquireMethod, SubtitleServiceServer.Acquire)},
		{MethodName: "Parse", Handler: unaryHandler(parseMethod, SubtitleServiceServer.Parse)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "subseek/v1/subtitle_service.proto",
}

type unaryMethod func(SubtitleServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SubtitleServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SubtitleServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// SubtitleServiceClient calls subseek.v1.SubtitleService.
type SubtitleServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSubtitleServiceClient(cc grpc.ClientConnInterface) *SubtitleServiceClient {
	return &SubtitleServiceClient{cc: cc}
}

func (c *SubtitleServiceClient) Acquire(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, acquireMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SubtitleServiceClient) Parse(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, parseMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
