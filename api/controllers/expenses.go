package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/motorledger/motorledger-backend/api/middleware"
	"github.com/motorledger/motorledger-backend/api/responses"
	"github.com/motorledger/motorledger-backend/api/validators"
	"github.com/motorledger/motorledger-backend/internal/expenses"
	"github.com/motorledger/motorledger-backend/pkg/enums"
	pkgerrors "github.com/motorledger/motorledger-backend/pkg/errors"
	"github.com/motorledger/motorledger-backend/pkg/logger"
)

func ExpenseCreate(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "expenses service unavailable"))
			return
		}

		vehicleID, err := validators.ParseURLUUID(chi.URLParam(r, "vehicleId"), "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req expenses.CreateExpenseRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Create(r.Context(), vehicleID, middleware.UserIDFromContext(r.Context()), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func ExpenseList(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "expenses service unavailable"))
			return
		}

		vehicleID, err := validators.ParseURLUUID(chi.URLParam(r, "vehicleId"), "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := buildExpenseFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views, err := svc.List(r.Context(), vehicleID, middleware.UserIDFromContext(r.Context()), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

func ExpenseGet(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "expenses service unavailable"))
			return
		}

		expenseID, err := validators.ParseURLUUID(chi.URLParam(r, "expenseId"), "expenseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), expenseID, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func ExpenseUpdate(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "expenses service unavailable"))
			return
		}

		expenseID, err := validators.ParseURLUUID(chi.URLParam(r, "expenseId"), "expenseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req expenses.UpdateExpenseRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Update(r.Context(), expenseID, middleware.UserIDFromContext(r.Context()), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func ExpenseDelete(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "expenses service unavailable"))
			return
		}

		expenseID, err := validators.ParseURLUUID(chi.URLParam(r, "expenseId"), "expenseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), expenseID, middleware.UserIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func buildExpenseFilters(r *http.Request) (expenses.ListFilters, error) {
	filters := expenses.ListFilters{}

	from, err := validators.ParseQueryDate(r, "start_date")
	if err != nil {
		return filters, err
	}
	to, err := validators.ParseQueryDate(r, "end_date")
	if err != nil {
		return filters, err
	}
	filters.DateFrom = from
	filters.DateTo = to

	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		category, err := enums.ParseExpenseCategory(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, err.Error()).
				WithDetails(map[string]any{"field": "category"})
		}
		filters.Category = &category
	}

	return filters, nil
}
