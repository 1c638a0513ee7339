package app

import (
	"context"

	apperrors "github.com/inkledger/inkledger/internal/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// localeMetadataKey carries the caller's preferred locale for error messages.
const localeMetadataKey = "accept-language"

// errorUnaryInterceptor converts domain errors into gRPC statuses with a
// localized user message before they leave the server. Errors that are
// already gRPC statuses pass through untouched.
func errorUnaryInterceptor(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err == nil {
		return resp, nil
	}
	if _, ok := status.FromError(err); ok {
		return resp, err
	}
	return resp, apperrors.HandleError(err, callerLocale(ctx))
}

func callerLocale(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(localeMetadataKey); len(values) > 0 {
		return values[0]
	}
	return ""
}
