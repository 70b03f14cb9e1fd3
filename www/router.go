package www

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"shopfloor/engine"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// buildVer busts static asset caches once per restart.
var buildVer = time.Now().Format("20060102150405")

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	engine   *engine.Engine
	sessions *sessionStore
	tmpl     *template.Template
	eventHub *EventHub
}

// NewRouter creates the chi router and returns it along with a stop function.
func NewRouter(eng *engine.Engine) (http.Handler, func()) {
	h := &Handlers{
		engine:   eng,
		sessions: newSessionStore(eng.AppConfig().Web.SessionSecret),
		eventHub: NewEventHub(),
	}

	funcMap := template.FuncMap{
		"buildVer": func() string { return buildVer },
		"stamp": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Local().Format("01/02/2006 15:04")
		},
	}
	h.tmpl = template.Must(template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html"))

	h.eventHub.Start()
	h.eventHub.SetupEngineListeners(eng)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(StaticFS()))))

	// Plant login/logout
	r.Get("/login", h.handleLoginPage)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)

	// Admin login
	r.Get("/admin/login", h.handleAdminLoginPage)
	r.Post("/admin/login", h.handleAdminLogin)

	// Plant pages
	r.Group(func(r chi.Router) {
		r.Use(h.plantMiddleware)
		r.Get("/", h.handleDashboard)
		r.Get("/screens/{screen}", h.handleScreen)
		r.Get("/screens/{screen}/export.xlsx", h.handleExport)
		r.Get("/events", h.handleEvents)
	})

	// Setup (admin-only)
	r.Group(func(r chi.Router) {
		r.Use(h.adminMiddleware)
		r.Get("/setup", h.handleSetup)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/screens", h.apiListScreens)
		r.Get("/screens/{screen}/records", h.apiScreenRecords)

		r.Group(func(r chi.Router) {
			r.Use(h.adminMiddleware)
			r.Put("/config/odata", h.apiUpdateOData)
			r.Post("/config/password", h.apiChangePassword)
			r.Get("/fetch-log", h.apiFetchLog)
		})
	})

	return r, func() {
		h.eventHub.Stop()
	}
}

// plantSession returns the engine session for the request's plant cookie.
func (h *Handlers) plantSession(r *http.Request) engine.Session {
	plant, _ := h.sessions.getPlant(r)
	return engine.NewSession(plant)
}

func (h *Handlers) plantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := h.sessions.getPlant(r); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := h.sessions.getUser(r); !ok {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				writeError(w, http.StatusUnauthorized, "admin login required")
				return
			}
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
