package app

import (
	"context"
	"testing"

	apperrors "github.com/inkledger/inkledger/internal/errors"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func invokeInterceptor(ctx context.Context, handlerErr error) error {
	handler := func(ctx context.Context, req any) (any, error) {
		return nil, handlerErr
	}
	_, err := errorUnaryInterceptor(ctx, nil, &grpc.UnaryServerInfo{}, handler)
	return err
}

func localizedDetail(t *testing.T, err error) *errdetails.LocalizedMessage {
	t.Helper()
	st, ok := status.FromError(err)
	if !ok {
		t.Fatalf("err = %v, want grpc status", err)
	}
	for _, detail := range st.Details() {
		if msg, ok := detail.(*errdetails.LocalizedMessage); ok {
			return msg
		}
	}
	t.Fatal("status carries no localized message detail")
	return nil
}

func TestErrorInterceptorLocalizesDomainErrors(t *testing.T) {
	t.Parallel()

	domainErr := apperrors.WithMetadata(apperrors.CodeInstallmentAlreadyPaid,
		"installment is already paid",
		map[string]string{"InstallmentNo": "2"})

	ctx := metadata.NewIncomingContext(context.Background(),
		metadata.Pairs(localeMetadataKey, "pt-BR"))
	err := invokeInterceptor(ctx, domainErr)

	if status.Code(err) != codes.FailedPrecondition {
		t.Errorf("code = %v, want failed precondition", status.Code(err))
	}
	msg := localizedDetail(t, err)
	if msg.GetLocale() != "pt-BR" {
		t.Errorf("locale = %q, want pt-BR", msg.GetLocale())
	}
	if msg.GetMessage() != "A parcela 2 já foi paga" {
		t.Errorf("message = %q, want pt-BR translation", msg.GetMessage())
	}
}

func TestErrorInterceptorDefaultsLocale(t *testing.T) {
	t.Parallel()

	domainErr := apperrors.WithMetadata(apperrors.CodeInstallmentAlreadyPaid,
		"installment is already paid",
		map[string]string{"InstallmentNo": "2"})

	err := invokeInterceptor(context.Background(), domainErr)

	msg := localizedDetail(t, err)
	if msg.GetLocale() != "en-US" {
		t.Errorf("locale = %q, want en-US", msg.GetLocale())
	}
	if msg.GetMessage() != "Installment 2 has already been paid" {
		t.Errorf("message = %q, want en-US translation", msg.GetMessage())
	}
}

func TestErrorInterceptorPassesStatusesThrough(t *testing.T) {
	t.Parallel()

	original := status.Error(codes.NotFound, "unknown service")
	err := invokeInterceptor(context.Background(), original)
	if err != original {
		t.Errorf("err = %v, want the original status untouched", err)
	}
}

func TestErrorInterceptorPassesSuccessThrough(t *testing.T) {
	t.Parallel()

	if err := invokeInterceptor(context.Background(), nil); err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
}
