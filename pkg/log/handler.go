package log

import (
	"context"
	"log/slog"

	cerrors "github.com/cockroachdb/errors"

	"github.com/YuminosukeSato/kernelsvm/pkg/errors"
)

// ErrFmtHandler is a slog handler for records carrying an ErrAttr error.
// It adds the cockroachdb stack details as "stacktrace" and, for the
// library's typed errors, a stable ErrorCodeKey attribute.
type ErrFmtHandler struct {
	handler slog.Handler
}

// WrapByErrFmtHandler wraps handler with ErrFmtHandler.
func WrapByErrFmtHandler(handler slog.Handler) slog.Handler {
	return &ErrFmtHandler{handler: handler}
}

func (eh *ErrFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return eh.handler.Enabled(ctx, l)
}

func (eh *ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		err, _ = attr.Value.Any().(error)
		return false
	})
	if err != nil {
		if code := errorCode(err); code != "" {
			r.AddAttrs(slog.String(ErrorCodeKey, code))
		}
		if st := extractStacktrace(err); st != "" {
			r.AddAttrs(slog.String(StacktraceAttrKey, st))
		}
	}
	return eh.handler.Handle(ctx, r)
}

func (eh *ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithAttrs(attrs)}
}

func (eh *ErrFmtHandler) WithGroup(g string) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithGroup(g)}
}

// errorCode names the first typed error in err's chain.
func errorCode(err error) string {
	var (
		notFitted *errors.NotFittedError
		dimension *errors.DimensionError
		invalid   *errors.ValidationError
		value     *errors.ValueError
		contract  *errors.ContractError
		numerical *errors.NumericalInstabilityError
		model     *errors.ModelError
	)
	switch {
	case errors.As(err, &contract):
		return "contract_violation"
	case errors.As(err, &numerical):
		return "numerical_instability"
	case errors.As(err, &notFitted):
		return "not_fitted"
	case errors.As(err, &dimension):
		return "dimension_mismatch"
	case errors.As(err, &invalid):
		return "invalid_parameter"
	case errors.As(err, &value):
		return "invalid_value"
	case errors.As(err, &model):
		return "model_error"
	}
	return ""
}

func extractStacktrace(err error) string {
	safeDetails := cerrors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
