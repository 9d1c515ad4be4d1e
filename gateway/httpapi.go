package gateway

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/samber/lo"

	"realchat/errors"
	"realchat/repositories"
	"realchat/services"
)

// API is the small REST surface around the auth collaborator:
// registration, login, and a safe user listing. Everything real-time
// goes through the websocket gateway instead.
type API struct {
	log   *slog.Logger
	auth  services.IAuthService
	users repositories.IUserRepository
}

func NewAPI(log *slog.Logger, auth services.IAuthService, users repositories.IUserRepository) *API {
	return &API{log: log, auth: auth, users: users}
}

func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/register", a.handleRegister)
	mux.HandleFunc("POST /api/login", a.handleLogin)
	mux.HandleFunc("GET /api/users", a.handleListUsers)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Username == "" || body.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password required"})
		return
	}

	user, err := a.auth.Register(body.Username, body.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": user.ID, "username": user.Username})
	case stderrors.Is(err, errors.ErrUserAlreadyExists):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "username taken"})
	case stderrors.Is(err, errors.ErrInvalidPassword):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		a.log.Error("Registration failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Username == "" || body.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password required"})
		return
	}

	user, token, err := a.auth.Login(body.Username, body.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"token":    token,
		"id":       user.ID,
		"username": user.Username,
	})
}

type userProjection struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

// handleListUsers returns every account with the credential hash
// projected away.
func (a *API) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	users, err := a.users.ListUsers()
	if err != nil {
		a.log.Error("User listing failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, lo.Map(users, func(item repositories.User, _ int) userProjection {
		return userProjection{ID: item.ID, Username: item.Username}
	}))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
