package handlers

import (
	"net/http"

	"github.com/pitstop/garage-bookings/web"
)

func servePage(w http.ResponseWriter, name string) {
	data, err := web.FS.ReadFile(name)
	if err != nil {
		http.Error(w, "page not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

func (h *Handlers) CustomerPage(w http.ResponseWriter, r *http.Request) {
	servePage(w, "index.html")
}

func (h *Handlers) AdminPage(w http.ResponseWriter, r *http.Request) {
	servePage(w, "admin_dashboard.html")
}
