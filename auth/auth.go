package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Ndymario/Checkers-Framework/env"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	CookieKeyState   = "oauth_state"
	CookieKeySession = "session"
)

const (
	stateMaxAge   = 10 * time.Minute
	sessionMaxAge = 24 * time.Hour
)

type UserSession struct {
	UserID    uuid.UUID
	UserEmail string
}

// Authenticator is the slice of auth the game and matchmaking servers
// depend on.
type Authenticator interface {
	IsAuthenticated(ctx context.Context, writer http.ResponseWriter, req *http.Request) (bool, error)
	GetUserSession(ctx context.Context, writer http.ResponseWriter, req *http.Request) (UserSession, error)
}

type AuthServer struct {
	ServeMux     *http.ServeMux
	oAuth2Config *oauth2.Config

	// dev only: requests without a session get an anonymous one
	allowAnonymous bool

	storeLock    sync.Mutex
	stateStore   map[string]time.Time
	sessionStore map[string]UserSession
}

func NewAuthServer(appEnv *env.Env) *AuthServer {
	server := &AuthServer{
		ServeMux: http.NewServeMux(),
		oAuth2Config: &oauth2.Config{
			ClientID:     appEnv.OauthClientId,
			ClientSecret: appEnv.OauthClientSecret,
			RedirectURL:  "http://localhost:3000/auth/callback",
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		allowAnonymous: appEnv.AppEnv == env.Dev,
		stateStore:     make(map[string]time.Time),
		sessionStore:   make(map[string]UserSession),
	}

	server.ServeMux.HandleFunc("/login", server.LoginHandler)
	server.ServeMux.HandleFunc("/callback", server.CallbackHandler)
	server.ServeMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "Welcome! <a href='/auth/login'>Login</a>")
	})

	return server
}

func (server *AuthServer) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	server.ServeMux.ServeHTTP(writer, req)
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func (server *AuthServer) LoginHandler(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}

	server.storeLock.Lock()
	server.stateStore[state] = time.Now()
	server.storeLock.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieKeyState,
		Value:    state,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(stateMaxAge.Seconds()),
	})

	url := server.oAuth2Config.AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (server *AuthServer) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(CookieKeyState)
	if err != nil {
		http.Error(w, "State cookie not found", http.StatusBadRequest)
		return
	}

	if r.URL.Query().Get("state") != cookie.Value {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	server.storeLock.Lock()
	timestamp, exists := server.stateStore[cookie.Value]
	delete(server.stateStore, cookie.Value)
	server.storeLock.Unlock()

	if !exists || time.Since(timestamp) > stateMaxAge {
		http.Error(w, "State expired or invalid", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieKeyState,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	code := r.URL.Query().Get("code")
	token, err := server.oAuth2Config.Exchange(context.Background(), code)
	if err != nil {
		http.Error(w, "Failed to exchange token", http.StatusInternalServerError)
		return
	}

	client := server.oAuth2Config.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v3/userinfo")
	if err != nil {
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	var userInfo struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		http.Error(w, "Failed to decode user info", http.StatusInternalServerError)
		return
	}

	server.setSession(w, UserSession{UserID: uuid.New(), UserEmail: userInfo.Email})
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

func (server *AuthServer) setSession(w http.ResponseWriter, session UserSession) {
	sessionId := uuid.NewString()

	server.storeLock.Lock()
	server.sessionStore[sessionId] = session
	server.storeLock.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieKeySession,
		Value:    sessionId,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionMaxAge.Seconds()),
	})
}

func (server *AuthServer) GetUserSession(
	ctx context.Context,
	writer http.ResponseWriter,
	req *http.Request,
) (UserSession, error) {
	cookie, err := req.Cookie(CookieKeySession)
	if err == nil {
		server.storeLock.Lock()
		session, found := server.sessionStore[cookie.Value]
		server.storeLock.Unlock()
		if found {
			return session, nil
		}
	}

	if !server.allowAnonymous {
		return UserSession{}, errors.New("no session found for request")
	}

	session := UserSession{UserID: uuid.New()}
	server.setSession(writer, session)
	return session, nil
}

func (server *AuthServer) IsAuthenticated(
	ctx context.Context,
	writer http.ResponseWriter,
	req *http.Request,
) (bool, error) {
	_, err := server.GetUserSession(ctx, writer, req)
	if err != nil {
		return false, nil
	}
	return true, nil
}
