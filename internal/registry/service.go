// internal/registry/service.go
package registry

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/pontoon/internal/middleware"
)

// Service is the directory clients query for live game servers. It exposes
// two endpoints: POST /hosts/register (also the heartbeat) and GET /hosts.
type Service struct {
	store  Store
	logger *logrus.Logger
}

func NewService(store Store, logger *logrus.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Routes returns the service's HTTP handler with request logging attached.
func (s *Service) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/hosts/register", s.handleRegister)
	mux.HandleFunc("/hosts", s.handleList)
	return middleware.LogMiddleware(s.logger)(mux)
}

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var h Host
	if err := json.NewDecoder(r.Body).Decode(&h); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := s.store.Register(r.Context(), h); err != nil {
		if errors.Is(err, ErrBadPort) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Errorf("failed to register host %s:%d: %v", h.Host, h.Port, err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	hosts, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Errorf("failed to list hosts: %v", err)
		http.Error(w, "listing failed", http.StatusInternalServerError)
		return
	}
	if hosts == nil {
		hosts = []Host{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(hosts)
}
