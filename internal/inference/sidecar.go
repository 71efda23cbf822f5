package inference

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eleven-am/live-coach/internal/minimap"
	"github.com/eleven-am/live-coach/internal/sequence"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

type SidecarConfig struct {
	Address        string
	Token          string
	Timeout        time.Duration
	SequenceLength int
	IncludeImages  bool
	TLSCreds       credentials.TransportCredentials
	DialOptions    []grpc.DialOption
}

// SidecarClient runs inference on a model process over gRPC.
type SidecarClient struct {
	addr          string
	token         string
	timeout       time.Duration
	length        int
	includeImages bool

	mu   sync.RWMutex
	conn *grpc.ClientConn
}

func NewSidecarClient(cfg SidecarConfig) (*SidecarClient, error) {
	var creds grpc.DialOption
	if cfg.TLSCreds != nil {
		creds = grpc.WithTransportCredentials(cfg.TLSCreds)
	} else {
		creds = grpc.WithTransportCredentials(insecure.NewCredentials())
	}
	opts := append([]grpc.DialOption{creds}, cfg.DialOptions...)

	conn, err := grpc.NewClient(cfg.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial inference sidecar: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.SequenceLength <= 0 {
		cfg.SequenceLength = sequence.DefaultLength
	}

	return &SidecarClient{
		addr:          cfg.Address,
		token:         cfg.Token,
		timeout:       cfg.Timeout,
		length:        cfg.SequenceLength,
		includeImages: cfg.IncludeImages,
		conn:          conn,
	}, nil
}

func (c *SidecarClient) Predict(ctx context.Context, window []minimap.Frame) (Probabilities, error) {
	if err := checkWindow(window, c.length); err != nil {
		return nil, err
	}

	req, err := encodeWindow(window, c.includeImages)
	if err != nil {
		return nil, unavailable("%v", err)
	}

	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return nil, unavailable("client closed")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	}

	resp := new(structpb.Struct)
	if err := conn.Invoke(ctx, PredictMethod, req, resp); err != nil {
		return nil, unavailable("predict: %v", err)
	}

	probs, err := decodeProbabilities(resp)
	if err != nil {
		return nil, unavailable("%v", err)
	}
	return probs, nil
}

func (c *SidecarClient) Address() string {
	return c.addr
}

func (c *SidecarClient) IsConnected() bool {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return false
	}
	s := conn.GetState()
	return s == connectivity.Ready || s == connectivity.Idle
}

func (c *SidecarClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
