package telemetry

import (
	"context"
	"crypto/subtle"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"shootingrange/rangesim/internal/logging"
)

// TokenMetadataKey carries the operator token on telemetry calls.
const TokenMetadataKey = "x-range-admin-token"

// ServerOptions returns the interceptors guarding telemetry calls. An empty
// token leaves the service open, which suits loopback-only deployments.
func ServerOptions(token string, logger *logging.Logger) []grpc.ServerOption {
	normalized := strings.TrimSpace(token)
	if normalized == "" {
		logger.Warn("telemetry authentication disabled")
		return nil
	}
	logger.Info("telemetry token authentication enabled")
	return []grpc.ServerOption{
		grpc.ChainStreamInterceptor(newTokenStreamInterceptor(normalized)),
		grpc.ChainUnaryInterceptor(newTokenUnaryInterceptor(normalized)),
	}
}

func newTokenStreamInterceptor(token string) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if err := authorize(ss.Context(), token, info.FullMethod); err != nil {
			return err
		}
		return handler(srv, ss)
	}
}

func newTokenUnaryInterceptor(token string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if err := authorize(ctx, token, info.FullMethod); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// authorize exempts the health service so probes work without credentials.
func authorize(ctx context.Context, token, method string) error {
	if strings.HasPrefix(method, "/grpc.health.v1.Health/") {
		return nil
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "missing metadata")
	}
	candidate := extractToken(md)
	if candidate == "" {
		return status.Error(codes.Unauthenticated, "missing admin token")
	}
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(token)) != 1 {
		return status.Error(codes.Unauthenticated, "invalid admin token")
	}
	return nil
}

func extractToken(md metadata.MD) string {
	for _, value := range md.Get(TokenMetadataKey) {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	for _, value := range md.Get("authorization") {
		if len(value) > 7 && strings.EqualFold(value[:7], "bearer ") {
			if token := strings.TrimSpace(value[7:]); token != "" {
				return token
			}
		}
	}
	return ""
}
