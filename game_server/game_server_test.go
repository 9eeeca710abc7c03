package game_server

import (
	"testing"

	"github.com/Ndymario/Checkers-Framework/auth"
	"github.com/Ndymario/Checkers-Framework/board"
	"github.com/Ndymario/Checkers-Framework/env"

	"github.com/google/uuid"
)

func testEnv() *env.Env {
	return &env.Env{BoardWidth: 8, BoardHeight: 8}
}

func getSession(t *testing.T, server *GameServer, sessionId uuid.UUID) *Session {
	t.Helper()
	server.sessionsLock.Lock()
	session := server.sessions[sessionId]
	server.sessionsLock.Unlock()
	if session == nil {
		t.Fatal("session not found")
	}
	return session
}

func receiveEvent(t *testing.T, sub *subscriber) Event {
	t.Helper()
	select {
	case event := <-sub.events:
		return event
	default:
		t.Fatal("no event was published to the subscriber")
		return Event{}
	}
}

func TestNewSession(t *testing.T) {
	server := NewGameServer(&auth.MockAuthServer{}, testEnv())

	red := uuid.New()
	black := uuid.New()
	sessionId := server.NewSession(red, black)
	session := getSession(t, server, sessionId)

	if session.engine.Board.PieceCount() != 24 {
		t.Errorf("expected a full starting board, got %d pieces",
			session.engine.Board.PieceCount())
	}
	if session.players[0].userId != red {
		t.Error("red player was not assigned the first seat")
	}
	if session.players[1].userId != black {
		t.Error("black player was not assigned the second seat")
	}

	server.RemoveSession(sessionId)
	server.sessionsLock.Lock()
	_, exists := server.sessions[sessionId]
	server.sessionsLock.Unlock()
	if exists {
		t.Error("session should have been removed")
	}
}

func TestHandleMove(t *testing.T) {
	server := NewGameServer(&auth.MockAuthServer{}, testEnv())
	sessionId := server.NewSession(uuid.New(), uuid.New())
	session := getSession(t, server, sessionId)

	request := Event{
		Type:  sendMove,
		Piece: board.NewPiece(false, board.Red, 1, 5),
		Move:  int(board.NewSquare(0, 4)),
	}
	session.handleMove(session.players[0], request)

	if _, found := session.engine.Board.PieceAt(0, 4); !found {
		t.Fatal("the moved piece is not on its target square")
	}
	if _, found := session.engine.Board.PieceAt(1, 5); found {
		t.Fatal("the moved piece is still on its starting square")
	}

	for _, player := range session.players {
		event := receiveEvent(t, player)
		if event.Type != moveEvent {
			t.Fatalf("expected a move event, got %q", event.Type)
		}
		if !event.Legal {
			t.Errorf("expected a legal move, got reason %q", event.Reason)
		}
		if event.Board == "" {
			t.Error("move event is missing the rendered board")
		}
	}
}

func TestHandleMoveIllegal(t *testing.T) {
	server := NewGameServer(&auth.MockAuthServer{}, testEnv())
	sessionId := server.NewSession(uuid.New(), uuid.New())
	session := getSession(t, server, sessionId)

	// straight ahead is never a legal checkers move
	request := Event{
		Type:  sendMove,
		Piece: board.NewPiece(false, board.Red, 1, 5),
		Move:  int(board.NewSquare(1, 4)),
	}
	session.handleMove(session.players[0], request)

	if _, found := session.engine.Board.PieceAt(1, 5); !found {
		t.Fatal("the piece should not have moved")
	}

	event := receiveEvent(t, session.players[0])
	if event.Legal {
		t.Fatal("expected an illegal move event")
	}
	if event.Reason == "" {
		t.Error("illegal move event is missing its reason")
	}
}

func TestHandleMoveUnknownPiece(t *testing.T) {
	server := NewGameServer(&auth.MockAuthServer{}, testEnv())
	sessionId := server.NewSession(uuid.New(), uuid.New())
	session := getSession(t, server, sessionId)

	request := Event{
		Type:  sendMove,
		Piece: board.NewPiece(false, board.Red, 4, 4),
		Move:  int(board.NewSquare(3, 3)),
	}
	session.handleMove(session.players[0], request)

	event := receiveEvent(t, session.players[0])
	if event.Type != errorEvent {
		t.Fatalf("expected an error event, got %q", event.Type)
	}
	if event := func() *Event {
		select {
		case event := <-session.players[1].events:
			return &event
		default:
			return nil
		}
	}(); event != nil {
		t.Fatal("the error should only have gone to the requesting player")
	}
}
