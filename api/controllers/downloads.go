package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/fitlabhq/fitstore-backend/api/middleware"
	"github.com/fitlabhq/fitstore-backend/api/responses"
	downloadsvc "github.com/fitlabhq/fitstore-backend/internal/downloads"
	pkgerrors "github.com/fitlabhq/fitstore-backend/pkg/errors"
	"github.com/fitlabhq/fitstore-backend/pkg/logger"
)

// CheckEntitlement reports whether an order can still download its file,
// without spending a download.
func CheckEntitlement(svc downloadsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "download service unavailable"))
			return
		}

		id, err := parsePathID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		decision, err := svc.CheckEntitlement(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := entitlementResponse{Allowed: decision.Allowed}
		if !decision.Allowed {
			payload.Reason = decision.Reason.String()
		}
		responses.WriteSuccess(w, payload)
	}
}

// DownloadFile serves the purchased file as an attachment. The entitlement
// spend happens inside the service; this handler only shapes the response.
func DownloadFile(svc downloadsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "download service unavailable"))
			return
		}

		id, err := parsePathID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stream, err := svc.Download(r.Context(), downloadsvc.DownloadRequest{
			OrderID:   id,
			IP:        middleware.ClientIP(r),
			UserAgent: r.UserAgent(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", stream.ContentType)
		w.Header().Set("Content-Length", strconv.FormatInt(stream.Size, 10))
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stream.FileName))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(stream.Data); err != nil && logg != nil {
			logg.Error(r.Context(), "write download body", err)
		}
	}
}

type entitlementResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}
