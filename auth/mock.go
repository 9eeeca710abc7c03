package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// MockAuthServer authenticates every request as the same user.
// Tests use it to stand in for the oauth flow.
type MockAuthServer struct {
	UserID uuid.UUID
}

func (server *MockAuthServer) IsAuthenticated(
	ctx context.Context,
	writer http.ResponseWriter,
	req *http.Request,
) (bool, error) {
	return true, nil
}

func (server *MockAuthServer) GetUserSession(
	ctx context.Context,
	writer http.ResponseWriter,
	req *http.Request,
) (UserSession, error) {
	return UserSession{UserID: server.UserID, UserEmail: "test@example.com"}, nil
}
