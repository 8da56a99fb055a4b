package routes

import (
	"net/http"

	_ "github.com/ovenlight/sms-dispatch/internal/docs" // swagger docs
	"github.com/ovenlight/sms-dispatch/internal/response"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerHandler "github.com/swaggo/http-swagger"
)

type AppDeps struct {
	Home    HomeHandler
	Message MessageHandler

	// RequireAdmin wraps admin-only routes with the auth gate.
	RequireAdmin func(http.Handler) http.Handler
}

type HomeHandler interface {
	Index(w http.ResponseWriter, r *http.Request)
	Health(w http.ResponseWriter, r *http.Request)
}

type MessageHandler interface {
	Send(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
	Reconcile(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	ControlScheduler(w http.ResponseWriter, r *http.Request)
}

func Register(mux *http.ServeMux, d AppDeps) {
	admin := func(h http.HandlerFunc) http.Handler {
		return d.RequireAdmin(h)
	}

	mux.HandleFunc("GET /{$}", d.Home.Index)
	mux.HandleFunc("GET /health", d.Home.Health)

	mux.Handle("POST /messages/send", admin(d.Message.Send))
	mux.Handle("GET /messages/status", admin(d.Message.Status))
	mux.Handle("GET /messages/reconcile", admin(d.Message.Reconcile))
	mux.Handle("GET /messages", admin(d.Message.List))
	mux.Handle("POST /scheduler", admin(d.Message.ControlScheduler))

	// Observability & docs
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /swagger/", swaggerHandler.WrapHandler)

	// Fallback handler for undefined routes (404)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.RespondError(w, http.StatusNotFound, "route not found")
	}))
}
