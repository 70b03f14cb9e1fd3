package www

import (
	"errors"
	"log"
	"net/http"

	"shopfloor/engine"
	"shopfloor/records"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.getPlant(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderTemplate(w, "login.html", map[string]interface{}{
		"Page": "login",
	})
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	plant := r.FormValue("plant")
	sess, err := h.engine.Login(plant, r.FormValue("password"))
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		h.renderTemplate(w, "login.html", map[string]interface{}{
			"Page":  "login",
			"Plant": plant,
			"Error": "Please enter both plant and password",
		})
		return
	}
	active, _ := sess.ActivePlant()
	if err := h.sessions.setPlant(w, r, active); err != nil {
		log.Printf("www: save session: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.engine.Logout(h.plantSession(r))
	h.sessions.clear(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := h.plantSession(r)
	tiles, err := h.engine.Dashboard(r.Context(), sess)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	plant, _ := sess.ActivePlant()
	h.renderTemplate(w, "dashboard.html", map[string]interface{}{
		"Page":  "dashboard",
		"Plant": plant,
		"Tiles": tiles,
	})
}

// handleScreen renders one order list. A failed fetch still renders the
// page, with the operator message and no rows.
func (h *Handlers) handleScreen(w http.ResponseWriter, r *http.Request) {
	sess := h.plantSession(r)
	plant, _ := sess.ActivePlant()
	screen, ok := h.engine.Catalog().Screen(chi.URLParam(r, "screen"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	form := readFilterForm(r)
	data := map[string]interface{}{
		"Page":   "screen",
		"Plant":  plant,
		"Screen": screen,
		"Filter": form,
		"Rows":   []records.Row{},
		"Export": exportLink(screen.ID, form),
	}

	state, err := form.State()
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		data["Error"] = err.Error()
		h.renderTemplate(w, "screen.html", data)
		return
	}

	st, err := h.engine.OpenScreen(r.Context(), sess, screen.ID)
	if err != nil {
		if errors.Is(err, engine.ErrNotAuthenticated) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		data["Error"] = openMessage(err)
		h.renderTemplate(w, "screen.html", data)
		return
	}

	st.Apply(state)
	data["Rows"] = st.Rows()
	data["Total"] = len(st.Records())
	h.renderTemplate(w, "screen.html", data)
}

func (h *Handlers) handleEvents(w http.ResponseWriter, r *http.Request) {
	plant, _ := h.sessions.getPlant(r)
	h.eventHub.Serve(w, r, plant)
}
