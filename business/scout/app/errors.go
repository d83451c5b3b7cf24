package app

import (
	"github.com/fd1az/arbitrage-scout/internal/apperror"
)

// Sentinels for errors.Is. Matching is by code, so any AppError carrying
// the code matches regardless of context or cause.
var (
	ErrSetup       = apperror.Sentinel(apperror.CodeSetupFailed)
	ErrNoLiquidity = apperror.Sentinel(apperror.CodeNoLiquidity)
)

func setupError(context string, cause error) error {
	return apperror.New(apperror.CodeSetupFailed,
		apperror.WithContext(context),
		apperror.WithCause(cause))
}
