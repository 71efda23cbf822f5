package inference

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName   = "coach.inference.v1.InferenceService"
	PredictMethod = "/" + ServiceName + "/Predict"
)

type PredictServer interface {
	Predict(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PredictServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Predict", Handler: predictHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "coach/inference/v1/inference.proto",
}

func RegisterPredictServer(s grpc.ServiceRegistrar, srv PredictServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func predictHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PredictServer).Predict(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PredictMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PredictServer).Predict(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Server exposes any Engine as an inference sidecar.
type Server struct {
	engine Engine
	token  string
	logger *slog.Logger
}

func NewServer(engine Engine, token string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine: engine,
		token:  token,
		logger: logger.With("component", "inference-server"),
	}
}

func (s *Server) Predict(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	window, err := decodeWindow(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode window: %v", err)
	}

	probs, err := s.engine.Predict(ctx, window)
	if err != nil {
		s.logger.Debug("predict failed", "frames", len(window), "error", err)
		return nil, status.Errorf(codes.Unavailable, "%v", err)
	}

	resp, err := encodeProbabilities(probs)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return resp, nil
}

func (s *Server) authorize(ctx context.Context) error {
	if s.token == "" {
		return nil
	}
	md, _ := metadata.FromIncomingContext(ctx)
	for _, v := range md.Get("authorization") {
		if subtle.ConstantTimeCompare([]byte(strings.TrimPrefix(v, "Bearer ")), []byte(s.token)) == 1 {
			return nil
		}
	}
	return status.Error(codes.Unauthenticated, "invalid token")
}
