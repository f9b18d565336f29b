package handler

import "net/http"

// HandleHealth responds to GET /health.
func (rp *Responder) HandleHealth(w http.ResponseWriter, r *http.Request) {
	rp.JSON(w, http.StatusOK, "Server is running", nil)
}
