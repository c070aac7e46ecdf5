package health

import (
	"encoding/json"
	"net/http"
)

// Status is the liveness document.
type Status struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Handler answers GET and HEAD with {"status":"ok","service":<service>}.
func Handler(service string) http.HandlerFunc {
	body, _ := json.Marshal(Status{Status: "ok", Service: service})
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = w.Write(body)
		}
	}
}
