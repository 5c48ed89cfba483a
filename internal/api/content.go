package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (d Dependencies) getClinic(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, d.Content.Clinic)
}

func (d Dependencies) listServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": d.Content.Services,
	})
}

func (d Dependencies) listSpecialties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": d.Content.Specialties,
	})
}

func (d Dependencies) listNews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": d.Content.NewsSummaries(),
	})
}

func (d Dependencies) getArticle(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	article, ok := d.Content.Article(slug)
	if !ok {
		WriteError(w, http.StatusNotFound, "not_found", "Article not found", d.Log)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (d Dependencies) getLegalPage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "page")

	page, ok := d.Content.LegalPage(name)
	if !ok {
		WriteError(w, http.StatusNotFound, "not_found", "Page not found", d.Log)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
