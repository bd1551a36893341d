package grpc

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/simaogato/goalfolio-backend/internal/domain"
	"github.com/simaogato/goalfolio-backend/internal/usecase/dashboard"
)

// optionalString reads a string field. Missing and null fields report nil.
func optionalString(req *structpb.Struct, key string) (*string, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return nil, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return nil, nil
	case *structpb.Value_StringValue:
		s := kind.StringValue
		return &s, nil
	default:
		return nil, status.Errorf(codes.InvalidArgument, "%s must be a string", key)
	}
}

func requiredString(req *structpb.Struct, key string) (string, error) {
	s, err := optionalString(req, key)
	if err != nil {
		return "", err
	}
	if s == nil || *s == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", key)
	}
	return *s, nil
}

// optionalDecimal reads an amount given either as a JSON number or as a decimal string
func optionalDecimal(req *structpb.Struct, key string) (*decimal.Decimal, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return nil, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return nil, nil
	case *structpb.Value_NumberValue:
		d := decimal.NewFromFloat(kind.NumberValue)
		return &d, nil
	case *structpb.Value_StringValue:
		d, err := decimal.NewFromString(kind.StringValue)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", key, err)
		}
		return &d, nil
	default:
		return nil, status.Errorf(codes.InvalidArgument, "%s must be a number or a decimal string", key)
	}
}

func requiredDecimal(req *structpb.Struct, key string) (decimal.Decimal, error) {
	d, err := optionalDecimal(req, key)
	if err != nil {
		return decimal.Zero, err
	}
	if d == nil {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "%s is required", key)
	}
	return *d, nil
}

func requiredID(req *structpb.Struct) (uuid.UUID, error) {
	s, err := requiredString(req, "id")
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid id format: %v", err)
	}
	return id, nil
}

func requiredCategory(req *structpb.Struct) (domain.Category, error) {
	s, err := requiredString(req, "category")
	if err != nil {
		return "", err
	}
	c, err := domain.ParseCategory(s)
	if err != nil {
		return "", status.Errorf(codes.InvalidArgument, "invalid category %q", s)
	}
	return c, nil
}

// domainPositionToMap converts a position to its response shape.
// Amounts are decimal strings so no precision is lost in transit.
func domainPositionToMap(p domain.Position) map[string]any {
	m := map[string]any{
		"id":          p.ID.String(),
		"category":    string(p.Category),
		"name":        p.Name,
		"quantity":    p.Quantity.String(),
		"unitPrice":   p.UnitPrice.String(),
		"marketValue": p.MarketValue().String(),
		"currency":    p.Currency,
	}
	if p.Symbol != nil {
		m["symbol"] = *p.Symbol
	}
	if p.Notes != nil {
		m["notes"] = *p.Notes
	}
	return m
}

func domainPositionsToList(positions []domain.Position) []any {
	list := make([]any, 0, len(positions))
	for _, p := range positions {
		list = append(list, domainPositionToMap(p))
	}
	return list
}

func netWorthToMap(result *dashboard.NetWorthResult) map[string]any {
	byCategory := make([]any, 0, len(result.ByCategory))
	for _, c := range result.ByCategory {
		byCategory = append(byCategory, map[string]any{
			"category": string(c.Category),
			"total":    c.Total.String(),
			"count":    c.Count,
			"weight":   c.Weight.StringFixed(2),
		})
	}
	return map[string]any{
		"total":      result.Total.String(),
		"liquidity":  result.Liquidity.String(),
		"invested":   result.Invested.String(),
		"byCategory": byCategory,
	}
}

func summaryToMap(sum domain.SeriesSummary) map[string]any {
	return map[string]any{
		"points":        sum.Points,
		"firstKey":      sum.FirstKey,
		"lastKey":       sum.LastKey,
		"first":         sum.First,
		"last":          sum.Last,
		"change":        sum.Change,
		"changePercent": sum.ChangePercent,
		"min":           sum.Min,
		"max":           sum.Max,
	}
}

// timestampString renders t with the protobuf JSON mapping of google.protobuf.Timestamp
func timestampString(t time.Time) string {
	b, err := protojson.Marshal(timestamppb.New(t))
	if err != nil {
		return t.UTC().Format(time.RFC3339)
	}
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return t.UTC().Format(time.RFC3339)
	}
	return s
}

func respond(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to build response: %v", err)
	}
	return out, nil
}
