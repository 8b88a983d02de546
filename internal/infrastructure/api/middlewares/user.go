package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/betsterhq/wallet-service/internal/errors"
	http2 "github.com/betsterhq/wallet-service/internal/infrastructure/api/http"
	"github.com/betsterhq/wallet-service/internal/usecases/interactor"
	"github.com/betsterhq/wallet-service/pkg/log"
	"github.com/go-chi/chi/v5"
)

// UserValidationMiddleware validates the user id.
func UserValidationMiddleware(walletInt *interactor.WalletInteractor) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.GetLogger()
			userID := chi.URLParam(r, http2.UserIDParam)
			if userID == "" {
				logger.Error().Msg(errors.ErrUserIDRequired)
				errors.HandleHTTPError(w, errors.NewValidationError("userId", errors.ErrUserIDRequired))
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if exists, _ := walletInt.ExistsByID(ctx, userID); !exists {
				logger.Error().Msg(errors.ErrInvalidUserID)
				errors.HandleHTTPError(w, errors.NewNotFoundError("user", userID))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
