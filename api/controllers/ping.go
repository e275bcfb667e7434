package controllers

import (
	"net/http"

	"github.com/plantops/plantops-backend/api/middleware"
	"github.com/plantops/plantops-backend/api/responses"
	"github.com/plantops/plantops-backend/pkg/types"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, types.SuccessFields{"scope": "public", "status": "ok"})
	}
}

// PrivatePing echoes the resolved viewer so clients can check their access.
func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields := types.SuccessFields{"scope": "private", "status": "ok"}
		if viewer, ok := middleware.ViewerFromContext(r.Context()); ok {
			fields["user_id"] = viewer.UserID
			fields["role"] = viewer.Role
			fields["sections"] = viewer.Sections
		}
		responses.WriteSuccess(w, fields)
	}
}

func AdminPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, types.SuccessFields{"scope": "admin", "status": "ok"})
	}
}
