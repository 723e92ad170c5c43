package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medislot/medislot-server/internal/catalog"
)

func listCategoriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, catalog.Categories())
	}
}

func listDoctorsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := catalog.Category(r.URL.Query().Get("category"))
		writeJSON(w, http.StatusOK, catalog.Doctors(category))
	}
}

func getDoctorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctor, ok := catalog.DoctorByID(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "not_found", "doctor not found")
			return
		}
		writeJSON(w, http.StatusOK, doctor)
	}
}
