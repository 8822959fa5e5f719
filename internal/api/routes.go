package api

import (
	"github.com/go-chi/chi/v5"
)

// setupAPIRoutes sets up API v1 routes
func (s *RESTServer) setupAPIRoutes(r chi.Router) {
	// Health check
	r.Get("/health", s.HandleHealth)
	r.Get("/", s.HandleRoot)

	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.HandleLogin)
		r.Post("/refresh", s.HandleRefresh)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		// Users
		r.Route("/users", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.HandleListUsers)
			r.Post("/", s.HandleCreateUser)
			r.Get("/me", s.HandleGetCurrentUser)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetUser)
				r.Put("/", s.HandleUpdateUser)
				r.Delete("/", s.HandleDeleteUser)
			})
		})

		// Devices
		r.Route("/devices", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.HandleListDevices)
			r.Post("/", s.HandleCreateDevice)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetDevice)
				r.Put("/", s.HandleUpdateDevice)
				r.Delete("/", s.HandleDeleteDevice)

				// Cached protocol state
				r.Get("/state", s.HandleGetDeviceState)
				r.Delete("/state", s.HandleClearDeviceState)

				// Commands
				r.Post("/on", s.HandleDeviceOn)
				r.Post("/off", s.HandleDeviceOff)
				r.Post("/refresh", s.HandleDeviceRefresh)
				r.Post("/configure", s.HandleDeviceConfigure)
				r.Post("/led", s.HandleDeviceSetLED)
				r.Post("/indicator", s.HandleDeviceSetIndicator)

				// Configuration parameters
				r.Get("/parameters", s.HandleListDeviceParameters)
				r.Put("/parameters/{number}", s.HandleSetDeviceParameter)
			})
		})

		// Device groups
		r.Route("/groups", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.HandleListGroups)
			r.Post("/", s.HandleCreateGroup)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetGroup)
				r.Put("/", s.HandleUpdateGroup)
				r.Delete("/", s.HandleDeleteGroup)
				r.Put("/devices", s.HandleSetGroupDevices)
			})
		})

		// Inactivity report
		r.Route("/activity", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.HandleActivityReport)
		})

		// Hub mode
		r.Route("/hub", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/mode", s.HandleGetHubMode)
			r.Put("/mode", s.HandleSetHubMode)
		})

		// Events
		r.Route("/events", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.HandleListEvents)
		})
	})
}
