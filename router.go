package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"keep-notes/auth"
	"keep-notes/config"
	"keep-notes/handlers"
	appmw "keep-notes/middleware"
	"keep-notes/store"
)

type deps struct {
	cfg     *config.Config
	log     *slog.Logger
	users   store.UserStore
	notes   store.NoteStore
	revoker auth.Revoker
}

func newRouter(d deps) (http.Handler, error) {
	tokens, err := auth.NewTokenService(d.cfg)
	if err != nil {
		return nil, err
	}
	accounts := auth.NewAccounts(d.users, tokens, auth.NewPasswordHasher(d.cfg.BcryptCost), d.cfg.AccessTokenTTL)
	gateway := appmw.NewGateway(tokens, d.users, d.revoker, d.log)

	authHandler := handlers.NewAuthHandler(accounts, d.revoker, d.log)
	notesHandler := handlers.NewNotesHandler(d.notes, d.log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(appmw.RequestLogger(d.log))
	r.Use(chimw.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: d.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler)

	r.Get("/health", handlers.Health)

	r.Post("/auth/signup", authHandler.Signup)
	r.Post("/auth/signin", authHandler.Signin)

	r.Group(func(r chi.Router) {
		r.Use(gateway.RequireAuth)
		r.Get("/auth/me", authHandler.Me)
		r.Post("/auth/logout", authHandler.Logout)

		r.Get("/notes", notesHandler.List)
		r.Post("/notes", notesHandler.Create)
		r.Get("/notes/{id}", notesHandler.Get)
		r.Put("/notes/{id}", notesHandler.Update)
		r.Delete("/notes/{id}", notesHandler.Delete)
	})

	return r, nil
}
