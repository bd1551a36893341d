package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// PortfolioClient is the client API of PortfolioService
type PortfolioClient struct {
	cc grpc.ClientConnInterface
}

// NewPortfolioClient creates a client on an existing connection
func NewPortfolioClient(cc grpc.ClientConnInterface) *PortfolioClient {
	return &PortfolioClient{cc: cc}
}

// Call invokes any PortfolioService method by name. A nil request sends an empty Struct.
func (c *PortfolioClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PortfolioClient) ListPositions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodListPositions, in, opts...)
}

func (c *PortfolioClient) GetTotal(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodGetTotal, in, opts...)
}

func (c *PortfolioClient) AddPosition(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodAddPosition, in, opts...)
}

func (c *PortfolioClient) UpdatePosition(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodUpdatePosition, in, opts...)
}

func (c *PortfolioClient) RemovePosition(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodRemovePosition, in, opts...)
}

func (c *PortfolioClient) RemoveCategory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodRemoveCategory, in, opts...)
}

func (c *PortfolioClient) GetHistory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodGetHistory, in, opts...)
}

func (c *PortfolioClient) GetNetWorth(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodGetNetWorth, in, opts...)
}

func (c *PortfolioClient) ListTickers(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodListTickers, in, opts...)
}

func (c *PortfolioClient) SaveTicker(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodSaveTicker, in, opts...)
}

func (c *PortfolioClient) RemoveTicker(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodRemoveTicker, in, opts...)
}

func (c *PortfolioClient) IsTickerSaved(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodIsTickerSaved, in, opts...)
}
