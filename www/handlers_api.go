package www

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shopfloor/records"
	"shopfloor/store"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) apiListScreens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Catalog().Screens())
}

type recordsResponse struct {
	Screen  string        `json:"screen"`
	Plant   string        `json:"plant"`
	Count   int           `json:"count"`
	Total   int           `json:"total"`
	Records []records.Row `json:"records"`
}

func (h *Handlers) apiScreenRecords(w http.ResponseWriter, r *http.Request) {
	sess := h.plantSession(r)
	plant, ok := sess.ActivePlant()
	if !ok {
		writeError(w, http.StatusUnauthorized, "plant login required")
		return
	}
	screenID := chi.URLParam(r, "screen")
	if _, ok := h.engine.Catalog().Screen(screenID); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown screen %q", screenID))
		return
	}
	state, err := readFilterForm(r).State()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, err := h.engine.OpenScreen(r.Context(), sess, screenID)
	if err != nil {
		writeError(w, openStatus(err), openMessage(err))
		return
	}
	st.Apply(state)
	rows := st.Rows()
	writeJSON(w, recordsResponse{
		Screen:  screenID,
		Plant:   plant,
		Count:   len(rows),
		Total:   len(st.Records()),
		Records: rows,
	})
}

func (h *Handlers) apiUpdateOData(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BaseURL   string `json:"base_url"`
		Timeout   string `json:"timeout"`
		Username  string `json:"username"`
		Password  string `json:"password"`
		SAPClient string `json:"sap_client"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.BaseURL = strings.TrimSpace(req.BaseURL)
	u, err := url.Parse(req.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		writeError(w, http.StatusBadRequest, "base_url must be an http(s) URL")
		return
	}
	var timeout time.Duration
	if req.Timeout != "" {
		timeout, err = time.ParseDuration(req.Timeout)
		if err != nil || timeout <= 0 {
			writeError(w, http.StatusBadRequest, "timeout must be a positive duration such as 30s")
			return
		}
	}

	cfg := h.engine.AppConfig()
	cfg.Lock()
	cfg.OData.BaseURL = req.BaseURL
	if timeout > 0 {
		cfg.OData.Timeout = timeout
	}
	cfg.OData.Username = req.Username
	if req.Password != "" {
		cfg.OData.Password = req.Password
	}
	cfg.OData.SAPClient = req.SAPClient
	cfg.Unlock()

	if path := h.engine.ConfigPath(); path != "" {
		if err := cfg.Save(path); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	actor, _ := h.sessions.getUser(r)
	h.engine.ApplyODataConfig(actor)
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiChangePassword(w http.ResponseWriter, r *http.Request) {
	username, ok := h.sessions.getUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "new password is required")
		return
	}

	user, err := h.engine.DB().GetAdminUser(username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "user not found")
		return
	}
	if !checkPassword(req.OldPassword, user.PasswordHash) {
		writeError(w, http.StatusBadRequest, "current password is incorrect")
		return
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := h.engine.DB().UpdateAdminPassword(username, hash); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to update password: %v", err))
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiFetchLog(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	var entries []*store.FetchLog
	var err error
	if r.URL.Query().Get("failed") != "" {
		entries, err = h.engine.DB().ListFailedFetchLog(limit)
	} else {
		entries, err = h.engine.DB().ListFetchLog(limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []*store.FetchLog{}
	}
	writeJSON(w, entries)
}
