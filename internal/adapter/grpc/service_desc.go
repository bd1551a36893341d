package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name
const ServiceName = "goalfolio.v1.PortfolioService"

// Method names of PortfolioService
const (
	MethodListPositions  = "ListPositions"
	MethodGetTotal       = "GetTotal"
	MethodAddPosition    = "AddPosition"
	MethodUpdatePosition = "UpdatePosition"
	MethodRemovePosition = "RemovePosition"
	MethodRemoveCategory = "RemoveCategory"
	MethodGetHistory     = "GetHistory"
	MethodGetNetWorth    = "GetNetWorth"
	MethodListTickers    = "ListTickers"
	MethodSaveTicker     = "SaveTicker"
	MethodRemoveTicker   = "RemoveTicker"
	MethodIsTickerSaved  = "IsTickerSaved"
)

// PortfolioServiceServer is the server API of PortfolioService.
// Requests and responses are google.protobuf.Struct messages.
type PortfolioServiceServer interface {
	ListPositions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTotal(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddPosition(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdatePosition(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemovePosition(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveCategory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetNetWorth(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTickers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SaveTicker(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveTicker(context.Context, *structpb.Struct) (*structpb.Struct, error)
	IsTickerSaved(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(PortfolioServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PortfolioServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(PortfolioServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// FullMethod returns the "/service/method" path of a PortfolioService method
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// PortfolioServiceDesc is the grpc.ServiceDesc for PortfolioService
var PortfolioServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PortfolioServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler(MethodListPositions, PortfolioServiceServer.ListPositions),
		unaryHandler(MethodGetTotal, PortfolioServiceServer.GetTotal),
		unaryHandler(MethodAddPosition, PortfolioServiceServer.AddPosition),
		unaryHandler(MethodUpdatePosition, PortfolioServiceServer.UpdatePosition),
		unaryHandler(MethodRemovePosition, PortfolioServiceServer.RemovePosition),
		unaryHandler(MethodRemoveCategory, PortfolioServiceServer.RemoveCategory),
		unaryHandler(MethodGetHistory, PortfolioServiceServer.GetHistory),
		unaryHandler(MethodGetNetWorth, PortfolioServiceServer.GetNetWorth),
		unaryHandler(MethodListTickers, PortfolioServiceServer.ListTickers),
		unaryHandler(MethodSaveTicker, PortfolioServiceServer.SaveTicker),
		unaryHandler(MethodRemoveTicker, PortfolioServiceServer.RemoveTicker),
		unaryHandler(MethodIsTickerSaved, PortfolioServiceServer.IsTickerSaved),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "goalfolio/v1/portfolio.proto",
}

// RegisterPortfolioServiceServer registers srv on s
func RegisterPortfolioServiceServer(s grpc.ServiceRegistrar, srv PortfolioServiceServer) {
	s.RegisterService(&PortfolioServiceDesc, srv)
}
