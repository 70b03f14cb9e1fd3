package www

import (
	"log"
	"net/http"
	"strings"
)

func (h *Handlers) handleSetup(w http.ResponseWriter, r *http.Request) {
	db := h.engine.DB()
	username, _ := h.sessions.getUser(r)

	fetchLog, err := db.ListFetchLog(25)
	if err != nil {
		log.Printf("www: setup fetch log: %v", err)
	}
	audit, err := db.ListAuditLog(25)
	if err != nil {
		log.Printf("www: setup audit log: %v", err)
	}
	admins, err := db.ListAdminUsers()
	if err != nil {
		log.Printf("www: setup admin users: %v", err)
	}

	h.renderTemplate(w, "setup.html", map[string]interface{}{
		"Page":     "setup",
		"Admin":    username,
		"OData":    h.engine.AppConfig().ODataSnapshot(),
		"Screens":  h.engine.Catalog().Screens(),
		"FetchLog": fetchLog,
		"Audit":    audit,
		"Admins":   admins,
	})
}

func (h *Handlers) handleAdminLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.getUser(r); ok {
		http.Redirect(w, r, "/setup", http.StatusSeeOther)
		return
	}
	exists, _ := h.engine.DB().AdminUserExists()
	h.renderTemplate(w, "admin_login.html", map[string]interface{}{
		"Page":  "admin-login",
		"First": !exists,
	})
}

// handleAdminLogin checks the admin credentials. The first login on an
// empty database creates the admin account.
func (h *Handlers) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		h.renderAdminLoginError(w, "Please enter both username and password")
		return
	}

	db := h.engine.DB()
	exists, err := db.AdminUserExists()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !exists {
		hash, err := hashPassword(password)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if err := db.CreateAdminUser(username, hash); err != nil {
			http.Error(w, "failed to create admin user", http.StatusInternalServerError)
			return
		}
		log.Printf("www: created admin user %s", username)
	} else {
		user, err := db.GetAdminUser(username)
		if err != nil || !checkPassword(password, user.PasswordHash) {
			h.renderAdminLoginError(w, "Invalid username or password")
			return
		}
	}

	if err := db.RecordAdminLogin(username); err != nil {
		log.Printf("www: record admin login %s: %v", username, err)
	}
	if err := h.sessions.setUser(w, r, username); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/setup", http.StatusSeeOther)
}

func (h *Handlers) renderAdminLoginError(w http.ResponseWriter, msg string) {
	w.WriteHeader(http.StatusUnauthorized)
	h.renderTemplate(w, "admin_login.html", map[string]interface{}{
		"Page":  "admin-login",
		"Error": msg,
	})
}
