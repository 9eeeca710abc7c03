package game_server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Ndymario/Checkers-Framework/auth"
	"github.com/Ndymario/Checkers-Framework/board"
	"github.com/Ndymario/Checkers-Framework/env"
	"github.com/Ndymario/Checkers-Framework/utility"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

type SessionMap = map[uuid.UUID]*Session

type GameServer struct {
	ServeMux     *http.ServeMux
	sessionsLock sync.Mutex
	sessions     SessionMap
	authServer   auth.Authenticator

	boardWidth  int
	boardHeight int
}

// Session is one game of checkers: an engine plus the sockets watching
// it. players[0] plays red, players[1] plays black; everyone else is a
// viewer. The session relays moves to the engine and fans the results
// out; it does not enforce turn order or mandatory jumps.
type Session struct {
	id     uuid.UUID
	engine *board.Engine

	subscriberLock sync.Mutex
	players        [2]*subscriber
	viewers        utility.Set[*subscriber]

	updatedAt time.Time
	createdAt time.Time
}

type subscriber struct {
	userId      uuid.UUID
	events      chan Event
	doneChannel chan struct{}
	Conn        *websocket.Conn
	closed      bool
	session     *Session
}

func NewSubscriber(userId uuid.UUID, session *Session) *subscriber {
	return &subscriber{
		userId:      userId,
		events:      make(chan Event, 10),
		doneChannel: make(chan struct{}),
		session:     session,
	}
}

func (sub *subscriber) init(Conn *websocket.Conn) {
	sub.Conn = Conn
}

func NewGameServer(authServer auth.Authenticator, appEnv *env.Env) *GameServer {
	server := &GameServer{
		ServeMux:    http.NewServeMux(),
		sessions:    make(SessionMap),
		authServer:  authServer,
		boardWidth:  appEnv.BoardWidth,
		boardHeight: appEnv.BoardHeight,
	}

	server.ServeMux.HandleFunc("/subscribe/", server.SubscribeHandler)

	return server
}

func newSession(red, black uuid.UUID, width, height int) *Session {
	session := &Session{
		id:     uuid.New(),
		engine: board.NewEngine(width, height),

		viewers: utility.NewSet[*subscriber](),

		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	session.players[0] = NewSubscriber(red, session)
	session.players[1] = NewSubscriber(black, session)
	return session
}

func (server *GameServer) NewSession(red, black uuid.UUID) uuid.UUID {
	server.sessionsLock.Lock()
	defer server.sessionsLock.Unlock()

	session := newSession(red, black, server.boardWidth, server.boardHeight)
	server.sessions[session.id] = session
	return session.id
}

func (server *GameServer) RemoveSession(id uuid.UUID) {
	server.sessionsLock.Lock()
	defer server.sessionsLock.Unlock()
	delete(server.sessions, id)
}

func (server *GameServer) OnShutdown() {
	server.sessionsLock.Lock()
	defer server.sessionsLock.Unlock()
	for _, session := range server.sessions {
		session.handleError(errors.New("server shutting down"))
	}
}

func (server *GameServer) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	authenticated, err := server.authServer.IsAuthenticated(ctx, writer, req)
	if err != nil {
		return
	}
	if !authenticated {
		writer.WriteHeader(http.StatusUnauthorized)
		return
	}
	server.ServeMux.ServeHTTP(writer, req)
}

func logError(ctx context.Context, err error) {
	slog.ErrorContext(ctx, "error", slog.Any("error", err))
}

// SubscribeHandler accepts the WebSocket connection and then
// subscribes it to all future events of the requested game.
func (server *GameServer) SubscribeHandler(writer http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	err := server.Subscribe(ctx, writer, req)
	if err == nil {
		return
	}
	logError(ctx, err)
	if errors.Is(err, context.Canceled) {
		return
	}
	closeStatus := websocket.CloseStatus(err)
	if closeStatus == websocket.StatusNormalClosure ||
		closeStatus == websocket.StatusGoingAway {
		return
	}
}

type eventType = string

const (
	connect       eventType = "connect"
	connectViewer           = "connectViewer"
	moveEvent               = "move"
	end                     = "end"
	errorEvent              = "error"
	sendMove                = "sendMove"
)

const (
	colourRed    = "r"
	colourBlack  = "b"
	colourViewer = "v"
)

// Event is the wire format shared by both directions. Pieces travel
// in their packed encoding; Move is the packed target square.
type Event struct {
	Type     eventType     `json:"type"`
	Board    string        `json:"board,omitempty"`
	Pieces   []board.Piece `json:"pieces,omitempty"`
	Colour   string        `json:"colour,omitempty"`
	Piece    board.Piece   `json:"piece,omitempty"`
	Move     int           `json:"move,omitempty"`
	Legal    bool          `json:"legal,omitempty"`
	Jump     bool          `json:"jump,omitempty"`
	Captured board.Piece   `json:"captured,omitempty"`
	Reason   string        `json:"reason,omitempty"`
	Outcome  string        `json:"outcome,omitempty"`
	Victor   string        `json:"victor,omitempty"`
	Text     string        `json:"text,omitempty"`
}

func encodePieces(gameBoard *board.Board) []board.Piece {
	pieces := make([]board.Piece, gameBoard.PieceCount())
	for i, piece := range gameBoard.Pieces {
		pieces[i] = *piece
	}
	return pieces
}

func (server *GameServer) Subscribe(ctx context.Context, writer http.ResponseWriter, req *http.Request) error {
	gameId, err := getId(writer, req)
	if err != nil {
		return err
	}

	authSession, err := server.authServer.GetUserSession(ctx, writer, req)
	if err != nil {
		return err
	}

	slog.Info("subscribing user",
		slog.String("email", authSession.UserEmail),
		slog.String("gameid", gameId.String()))

	server.sessionsLock.Lock()
	session, found := server.sessions[gameId]
	server.sessionsLock.Unlock()

	if !found {
		writer.WriteHeader(http.StatusNotFound)
		return errors.New("game not found")
	}

	conn, err := websocket.Accept(writer, req, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		return err
	}

	session.subscriberLock.Lock()
	sub, colour := session.getSubscriber(ctx, authSession.UserID)
	sub.init(conn)
	session.subscriberLock.Unlock()

	ctx = context.WithoutCancel(ctx)

	event := session.CreateConnectEvent(colour)
	err = sub.write(ctx, event)
	if err != nil {
		sub.closeNow(ctx, err)
		return err
	}

	if colour != colourViewer {
		go sub.initRead(ctx)
	}
	go sub.initWrite(ctx)

	return nil
}

// Doesn't lock
func (session *Session) getSubscriber(ctx context.Context, userId uuid.UUID) (*subscriber, string) {
	if userId == session.players[0].userId {
		slog.InfoContext(ctx, "added client to session as red player",
			slog.String("id", userId.String()))
		return session.players[0], colourRed
	} else if userId == session.players[1].userId {
		slog.InfoContext(ctx, "added client to session as black player",
			slog.String("id", userId.String()))
		return session.players[1], colourBlack
	}

	slog.InfoContext(ctx, "added client to session as viewer",
		slog.String("id", userId.String()))
	sub := NewSubscriber(userId, session)
	session.viewers.Add(sub)
	return sub, colourViewer
}

func (session *Session) CreateConnectEvent(colour string) Event {
	connectType := connect
	if colour == colourViewer {
		connectType = connectViewer
	}
	return Event{
		Type:   connectType,
		Board:  board.Render(session.engine.Board),
		Pieces: encodePieces(session.engine.Board),
		Colour: colour,
	}
}

func (session *Session) DeleteSubscriber(sub *subscriber) {
	if session.players[0] == sub {
		session.end(colourBlack)
		return
	} else if session.players[1] == sub {
		session.end(colourRed)
		return
	}

	session.subscriberLock.Lock()
	session.viewers.Remove(sub)
	session.subscriberLock.Unlock()
}

func (session *Session) end(victor string) {
	session.publish(nil, Event{Type: end, Outcome: "win", Victor: victor})
}

func (session *Session) publishImpl(event Event, sub *subscriber) {
	if sub == nil || sub.events == nil {
		return
	}
	// if the buffer is full the subscriber is closed
	select {
	case sub.events <- event:
	default:
		sub.closeSlow()
	}
}

func (session *Session) publish(sub *subscriber, event Event) {
	for _, player := range session.players {
		if player == sub {
			continue
		}
		session.publishImpl(event, player)
	}
	for viewer := range session.viewers.Iter() {
		if viewer == sub {
			continue
		}
		session.publishImpl(event, viewer)
	}
}

func (session *Session) handleError(err error) {
	session.publish(nil, Event{Type: errorEvent, Text: err.Error()})
	for _, player := range session.players {
		player.closeNow(nil, err)
	}
	for viewer := range session.viewers.Iter() {
		viewer.closeNow(nil, err)
	}
}

// handleMove resolves the requested piece against the board and asks
// the engine to validate and execute. The result, legal or not, is
// fanned out to every subscriber including the mover.
func (session *Session) handleMove(sub *subscriber, request Event) {
	movingPiece, found := session.engine.Board.PieceAt(
		request.Piece.Column(), request.Piece.Row())
	if !found {
		session.publishImpl(Event{
			Type: errorEvent,
			Text: "no piece on the requested square",
		}, sub)
		return
	}

	result := session.engine.Move(movingPiece, request.Move)
	if !result.Legal {
		slog.Info("illegal move rejected", slog.String("reason", result.Reason))
	}

	event := Event{
		Type:   moveEvent,
		Piece:  *movingPiece,
		Move:   request.Move,
		Legal:  result.Legal,
		Jump:   result.Jump,
		Reason: result.Reason,
		Board:  board.Render(session.engine.Board),
		Pieces: encodePieces(session.engine.Board),
	}
	if result.Captured != nil {
		event.Captured = *result.Captured
	}
	session.publish(nil, event)

	if result.Captured != nil {
		loser := result.Captured.Colour()
		if session.engine.Board.RemainingPieces(loser) == 0 {
			if loser == board.Red {
				session.end(colourBlack)
			} else {
				session.end(colourRed)
			}
		}
	}

	session.updatedAt = time.Now()
}

func writeTimeout(ctx context.Context, timeout time.Duration, wsConn *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return wsConn.Write(ctx, websocket.MessageText, msg)
}

func (sub *subscriber) signalDone() {
	if sub.doneChannel == nil {
		return
	}
	// the write loop may never have started for this subscriber
	select {
	case sub.doneChannel <- struct{}{}:
	default:
	}
}

func (sub *subscriber) closeNow(ctx context.Context, err error) {
	sub.signalDone()
	sub.closed = true

	slog.Info("closing")
	if err != nil {
		logError(ctx, err)
	}
	if sub.Conn != nil {
		sub.Conn.CloseNow()
	}
	sub.session.DeleteSubscriber(sub)
}

func (sub *subscriber) closeSlow() {
	sub.signalDone()
	sub.closed = true

	slog.Info("closing")
	if sub.Conn != nil {
		err := sub.Conn.Close(websocket.StatusPolicyViolation,
			"connection too slow to keep up with messages")
		if err != nil {
			sub.Conn.CloseNow()
		}
	}
	sub.session.DeleteSubscriber(sub)
}

func (sub *subscriber) initRead(ctx context.Context) {
	buffer := make([]byte, 1000)
	for {
		msgType, reader, err := sub.Conn.Reader(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			slog.InfoContext(ctx, "close", slog.Int("code", int(closeStatus)))

			sub.closeNow(ctx, err)
			return
		}
		if msgType != websocket.MessageText {
			return
		}

		n, err := reader.Read(buffer)
		if err != nil {
			sub.closeNow(ctx, err)
			return
		}

		request := Event{}
		err = json.Unmarshal(buffer[:n], &request)
		if err != nil {
			sub.closeNow(ctx, err)
			return
		}
		if request.Type != sendMove {
			sub.closeNow(ctx, errors.New("event sent is not \"sendMove\""))
			return
		}

		sub.session.handleMove(sub, request)
	}
}

const (
	pongWait     = 5 * time.Second
	pingInterval = (pongWait * 9) / 10
)

func (sub *subscriber) write(ctx context.Context, event Event) error {
	resp, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return writeTimeout(ctx, time.Second*5, sub.Conn, resp)
}

func (sub *subscriber) initWrite(ctx context.Context) {
	pinger := time.NewTicker(pingInterval)
	defer pinger.Stop()

	for {
		select {
		case <-sub.doneChannel:
			return
		case event := <-sub.events:
			err := sub.write(ctx, event)
			if err != nil {
				sub.closeNow(ctx, err)
				return
			}
		case <-pinger.C:
			slog.DebugContext(ctx, "pinging")
			ctx, cancel := context.WithTimeout(ctx, pongWait)
			defer cancel()

			err := sub.Conn.Ping(ctx)
			if err != nil {
				sub.closeNow(ctx, err)
				return
			}
		case <-ctx.Done():
			sub.closeNow(ctx, nil)
			return
		}
	}
}

func getId(writer http.ResponseWriter, req *http.Request) (uuid.UUID, error) {
	id := strings.TrimPrefix(req.URL.Path, "/subscribe/")
	if id == "" {
		http.Error(writer, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return uuid.UUID{}, errors.New("no game id in request")
	}

	return uuid.Parse(id)
}
