package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/motorledger/motorledger-backend/api/middleware"
	"github.com/motorledger/motorledger-backend/api/responses"
	"github.com/motorledger/motorledger-backend/api/validators"
	"github.com/motorledger/motorledger-backend/internal/fuel"
	"github.com/motorledger/motorledger-backend/pkg/enums"
	pkgerrors "github.com/motorledger/motorledger-backend/pkg/errors"
	"github.com/motorledger/motorledger-backend/pkg/logger"
)

func FuelEntryCreate(svc fuel.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fuel service unavailable"))
			return
		}

		vehicleID, err := validators.ParseURLUUID(chi.URLParam(r, "vehicleId"), "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req fuel.CreateFuelEntryRequest
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

func FuelEntryList(svc fuel.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fuel service unavailable"))
			return
		}

		vehicleID, err := validators.ParseURLUUID(chi.URLParam(r, "vehicleId"), "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := buildFuelFilters(r)
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

func buildFuelFilters(r *http.Request) (fuel.ListFilters, error) {
	filters := fuel.ListFilters{}

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

	if raw := strings.TrimSpace(r.URL.Query().Get("energy_type")); raw != "" {
		energyType, err := enums.ParseEnergyType(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, err.Error()).
				WithDetails(map[string]any{"field": "energy_type"})
		}
		filters.EnergyType = &energyType
	}

	return filters, nil
}

func FuelEntryGet(svc fuel.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fuel service unavailable"))
			return
		}

		entryID, err := validators.ParseURLUUID(chi.URLParam(r, "entryId"), "entryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), entryID, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func FuelEntryUpdate(svc fuel.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fuel service unavailable"))
			return
		}

		entryID, err := validators.ParseURLUUID(chi.URLParam(r, "entryId"), "entryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req fuel.UpdateFuelEntryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Update(r.Context(), entryID, middleware.UserIDFromContext(r.Context()), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func FuelEntryDelete(svc fuel.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fuel service unavailable"))
			return
		}

		entryID, err := validators.ParseURLUUID(chi.URLParam(r, "entryId"), "entryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), entryID, middleware.UserIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func FuelEfficiency(svc fuel.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fuel service unavailable"))
			return
		}

		vehicleID, err := validators.ParseURLUUID(chi.URLParam(r, "vehicleId"), "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Efficiency(r.Context(), vehicleID, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
