package errors

import (
	stderrors "errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestGRPCCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeAmountNotPositive, codes.InvalidArgument},
		{CodeInstallmentCountInvalid, codes.InvalidArgument},
		{CodeOrderPlanLocked, codes.FailedPrecondition},
		{CodeInstallmentAlreadyPaid, codes.FailedPrecondition},
		{CodeAdjustmentBudgetExceeded, codes.FailedPrecondition},
		{CodeNotFound, codes.NotFound},
		{CodePermissionDenied, codes.PermissionDenied},
		{CodeRoundingIrreconcilable, codes.Internal},
		{CodeUnknown, codes.Internal},
	}

	for _, tt := range tests {
		if got := tt.code.GRPCCode(); got != tt.want {
			t.Errorf("GRPCCode(%s) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestErrorIs(t *testing.T) {
	t.Parallel()

	err := New(CodeOrderPlanLocked, "plan locked")
	if !stderrors.Is(err, New(CodeOrderPlanLocked, "different message")) {
		t.Error("errors with the same code should match")
	}
	if stderrors.Is(err, New(CodeNotFound, "plan locked")) {
		t.Error("errors with different codes should not match")
	}
}

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("disk full")
	err := Wrap(CodeUnknown, "write failed", cause)
	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause should be reachable via errors.Is")
	}
}

func TestHandleError(t *testing.T) {
	t.Parallel()

	t.Run("nil", func(t *testing.T) {
		t.Parallel()
		if got := HandleError(nil, ""); got != nil {
			t.Errorf("HandleError(nil) = %v, want nil", got)
		}
	})

	t.Run("domain error", func(t *testing.T) {
		t.Parallel()
		err := WithMetadata(CodeInstallmentAlreadyPaid, "installment already paid", map[string]string{
			"InstallmentNo": "2",
		})
		got := HandleError(err, "en-US")
		st, ok := status.FromError(got)
		if !ok {
			t.Fatalf("HandleError returned non-status error: %v", got)
		}
		if st.Code() != codes.FailedPrecondition {
			t.Errorf("status code = %v, want %v", st.Code(), codes.FailedPrecondition)
		}
		if st.Message() != "installment already paid" {
			t.Errorf("status message = %q, want internal message", st.Message())
		}
	})

	t.Run("unknown error", func(t *testing.T) {
		t.Parallel()
		got := HandleError(stderrors.New("boom"), "en-US")
		st, ok := status.FromError(got)
		if !ok {
			t.Fatalf("HandleError returned non-status error: %v", got)
		}
		if st.Code() != codes.Internal {
			t.Errorf("status code = %v, want %v", st.Code(), codes.Internal)
		}
	})
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	if got := GetCode(New(CodeNotFound, "missing")); got != CodeNotFound {
		t.Errorf("GetCode = %v, want %v", got, CodeNotFound)
	}
	if got := GetCode(stderrors.New("plain")); got != CodeUnknown {
		t.Errorf("GetCode(plain) = %v, want %v", got, CodeUnknown)
	}
	if !IsCode(New(CodeNotFound, "missing"), CodeNotFound) {
		t.Error("IsCode should match the error's code")
	}
}
