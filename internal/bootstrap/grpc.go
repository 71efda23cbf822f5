package bootstrap

import (
	"context"
	"log/slog"
	"net"

	"github.com/eleven-am/live-coach/internal/inference"
	"go.uber.org/fx"
	"google.golang.org/grpc"
)

func NewGRPCServer() *grpc.Server {
	return grpc.NewServer()
}

func ProvideInferenceServer(cfg *Config, logger *slog.Logger) *inference.Server {
	engine := inference.NewHeuristicEngine(cfg.SequenceLength)
	return inference.NewServer(engine, cfg.InferenceToken, logger)
}

func RegisterInferenceService(server *grpc.Server, inferenceServer *inference.Server) {
	inference.RegisterPredictServer(server, inferenceServer)
}

func StartGRPCServer(lc fx.Lifecycle, server *grpc.Server, cfg *Config, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				return err
			}
			go func() {
				logger.Info("gRPC inference server starting", "addr", cfg.GRPCAddr)
				if err := server.Serve(lis); err != nil {
					logger.Error("gRPC server error", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			server.GracefulStop()
			return nil
		},
	})
}

var GRPCModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		NewGRPCServer,
		ProvideInferenceServer,
	),
	fx.Invoke(RegisterInferenceService),
	fx.Invoke(StartGRPCServer),
)

// RunSidecar serves the heuristic engine over gRPC for clients configured
// with INFERENCE_ADDRESS.
func RunSidecar() {
	fx.New(
		fx.Provide(LoadConfig),
		GRPCModule,
	).Run()
}
