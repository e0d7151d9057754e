package controllers

import (
	"net/http"

	"github.com/inkwell/bookstore-backend/api/responses"
	checkoutsvc "github.com/inkwell/bookstore-backend/internal/checkout"
	pkgerrors "github.com/inkwell/bookstore-backend/pkg/errors"
	"github.com/inkwell/bookstore-backend/pkg/logger"
)

// Checkout converts the caller's cart into a receipt, decrementing stock.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Checkout(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}
