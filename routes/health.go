package routes

import "net/http"

const healthTimeLayout = "2006-01-02T15:04:05.000Z07:00"

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: rt.now().UTC().Format(healthTimeLayout),
	})
}
