package grpc

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/goalfolio-backend/internal/domain"
	"github.com/simaogato/goalfolio-backend/internal/usecase/dashboard"
	"github.com/simaogato/goalfolio-backend/internal/usecase/ledger"
	"github.com/simaogato/goalfolio-backend/internal/usecase/valuation"
	"github.com/simaogato/goalfolio-backend/internal/usecase/watchlist"
)

// Server implements the PortfolioService gRPC server
type Server struct {
	Ledger           *ledger.Service
	History          *valuation.Service
	Watchlist        *watchlist.Service
	DashboardService *dashboard.DashboardService
}

var _ PortfolioServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(
	ledgerService *ledger.Service,
	history *valuation.Service,
	watchlistService *watchlist.Service,
	dashboardService *dashboard.DashboardService,
) *Server {
	return &Server{
		Ledger:           ledgerService,
		History:          history,
		Watchlist:        watchlistService,
		DashboardService: dashboardService,
	}
}

// ListPositions handles the ListPositions RPC
func (s *Server) ListPositions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	// Parse category filter (optional)
	category, err := optionalString(req, "category")
	if err != nil {
		return nil, err
	}

	positions := s.Ledger.Positions()
	if category != nil && *category != "" {
		c, err := domain.ParseCategory(*category)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid category %q", *category)
		}
		positions = s.Ledger.PositionsIn(c)
	}

	return respond(map[string]any{
		"positions": domainPositionsToList(positions),
		"count":     len(positions),
	})
}

// GetTotal handles the GetTotal RPC
func (s *Server) GetTotal(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return respond(map[string]any{
		"total": s.Ledger.TotalMarketValue().String(),
	})
}

// AddPosition handles the AddPosition RPC
func (s *Server) AddPosition(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	category, err := requiredCategory(req)
	if err != nil {
		return nil, err
	}

	// Parse amounts; unit price is optional for cash and other assets
	quantity, err := requiredDecimal(req, "quantity")
	if err != nil {
		return nil, err
	}
	unitPrice, err := optionalDecimal(req, "unitPrice")
	if err != nil {
		return nil, err
	}

	draft := ledger.Draft{
		Category:  category,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
	for key, dst := range map[string]*string{
		"symbol":   &draft.Symbol,
		"name":     &draft.Name,
		"currency": &draft.Currency,
		"notes":    &draft.Notes,
	} {
		v, err := optionalString(req, key)
		if err != nil {
			return nil, err
		}
		if v != nil {
			*dst = *v
		}
	}

	// Call usecase service
	p, err := s.Ledger.AddDraft(ctx, draft)
	if err != nil {
		return nil, mapError(err)
	}

	return respond(map[string]any{
		"position": domainPositionToMap(p),
		"total":    s.Ledger.TotalMarketValue().String(),
	})
}

// UpdatePosition handles the UpdatePosition RPC.
// Only the fields present in the request are changed.
func (s *Server) UpdatePosition(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req)
	if err != nil {
		return nil, err
	}

	var patch ledger.Patch
	if patch.Quantity, err = optionalDecimal(req, "quantity"); err != nil {
		return nil, err
	}
	if patch.UnitPrice, err = optionalDecimal(req, "unitPrice"); err != nil {
		return nil, err
	}
	if patch.Symbol, err = optionalString(req, "symbol"); err != nil {
		return nil, err
	}
	if patch.Name, err = optionalString(req, "name"); err != nil {
		return nil, err
	}
	if patch.Currency, err = optionalString(req, "currency"); err != nil {
		return nil, err
	}
	if patch.Notes, err = optionalString(req, "notes"); err != nil {
		return nil, err
	}

	p, found, err := s.Ledger.PatchPosition(ctx, id, patch)
	if err != nil {
		return nil, mapError(err)
	}
	// The ledger treats an unknown ID as a no-op; callers need to know
	if !found {
		return nil, status.Errorf(codes.NotFound, "position %s not found", id)
	}

	return respond(map[string]any{
		"position": domainPositionToMap(p),
		"total":    s.Ledger.TotalMarketValue().String(),
	})
}

// RemovePosition handles the RemovePosition RPC
func (s *Server) RemovePosition(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req)
	if err != nil {
		return nil, err
	}

	if err := s.Ledger.Remove(ctx, id); err != nil {
		return nil, mapError(err)
	}

	return respond(map[string]any{
		"total": s.Ledger.TotalMarketValue().String(),
	})
}

// RemoveCategory handles the RemoveCategory RPC
func (s *Server) RemoveCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	category, err := requiredCategory(req)
	if err != nil {
		return nil, err
	}

	if err := s.Ledger.RemoveAll(ctx, category); err != nil {
		return nil, mapError(err)
	}

	return respond(map[string]any{
		"total": s.Ledger.TotalMarketValue().String(),
	})
}

// GetHistory handles the GetHistory RPC
func (s *Server) GetHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	series := s.History.Series()

	points := make([]any, 0, len(series))
	for _, p := range series {
		points = append(points, map[string]any{
			"key":   p.Key,
			"date":  timestampString(p.Date),
			"value": p.Value,
		})
	}

	return respond(map[string]any{
		"points":  points,
		"summary": summaryToMap(valuation.Summarize(series)),
	})
}

// GetNetWorth handles the GetNetWorth RPC
func (s *Server) GetNetWorth(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	// Call dashboard service
	result, err := s.DashboardService.GetNetWorth(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return respond(netWorthToMap(result))
}

// ListTickers handles the ListTickers RPC
func (s *Server) ListTickers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tickers := s.Watchlist.Tickers()

	list := make([]any, 0, len(tickers))
	for _, t := range tickers {
		list = append(list, map[string]any{"symbol": t.Symbol, "name": t.Name})
	}

	return respond(map[string]any{"tickers": list})
}

// SaveTicker handles the SaveTicker RPC
func (s *Server) SaveTicker(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	symbol, err := requiredString(req, "symbol")
	if err != nil {
		return nil, err
	}
	name, err := optionalString(req, "name")
	if err != nil {
		return nil, err
	}
	if name == nil {
		name = &symbol
	}

	saved, err := s.Watchlist.Save(ctx, symbol, *name)
	if err != nil {
		return nil, mapError(err)
	}

	return respond(map[string]any{"saved": saved})
}

// RemoveTicker handles the RemoveTicker RPC
func (s *Server) RemoveTicker(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	symbol, err := requiredString(req, "symbol")
	if err != nil {
		return nil, err
	}

	removed, err := s.Watchlist.Remove(ctx, symbol)
	if err != nil {
		return nil, mapError(err)
	}

	return respond(map[string]any{"removed": removed})
}

// IsTickerSaved handles the IsTickerSaved RPC
func (s *Server) IsTickerSaved(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	symbol, err := requiredString(req, "symbol")
	if err != nil {
		return nil, err
	}

	return respond(map[string]any{"saved": s.Watchlist.IsSaved(strings.TrimSpace(symbol))})
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrInvalidPosition),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, watchlist.ErrInvalidTicker):
		return status.Errorf(codes.InvalidArgument, "%s", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s", err.Error())
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s", err.Error())
	}

	// Default to Internal error for storage and unknown errors
	return status.Errorf(codes.Internal, "%s", err.Error())
}
