package matchmaking_server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Ndymario/Checkers-Framework/auth"
	"github.com/Ndymario/Checkers-Framework/game_server"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// MatchmakingServer pairs players from an unranked queue into game
// sessions. The queued player waits on a websocket; the player who
// completes the pair gets the game id in the HTTP response and the
// waiter is told over their socket.
type MatchmakingServer struct {
	ServeMux   *http.ServeMux
	gameServer *game_server.GameServer
	authServer auth.Authenticator
	queueLock  sync.Mutex
	queue      []*player
}

type player struct {
	id          uuid.UUID
	Conn        *websocket.Conn
	closed      bool
	doneChannel chan struct{}
	server      *MatchmakingServer
}

func newPlayer(id uuid.UUID, conn *websocket.Conn, server *MatchmakingServer) *player {
	return &player{
		id:          id,
		Conn:        conn,
		doneChannel: make(chan struct{}),
		server:      server,
	}
}

func NewMatchmakingServer(
	gameServer *game_server.GameServer,
	authServer auth.Authenticator,
) *MatchmakingServer {
	server := &MatchmakingServer{
		ServeMux:   http.NewServeMux(),
		gameServer: gameServer,
		authServer: authServer,
		queue:      make([]*player, 0),
	}

	server.ServeMux.HandleFunc("/unranked", server.UnrankedHandler)
	server.ServeMux.HandleFunc("/unranked/subscribe", server.UnrankedQueueHandler)

	return server
}

func (server *MatchmakingServer) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	server.ServeMux.ServeHTTP(writer, req)
}

func (server *MatchmakingServer) OnShutdown() {
	server.queueLock.Lock()
	queued := server.queue
	server.queue = nil
	server.queueLock.Unlock()

	for _, waiting := range queued {
		waiting.closeNow(context.Background(), nil)
	}
}

func logError(ctx context.Context, err error) {
	slog.ErrorContext(ctx, "error", slog.Any("error", err))
}

type QueueResponse struct {
	Found  bool   `json:"found"`
	GameId string `json:"gameId,omitempty"`
}

// UnrankedHandler tries to pair the caller with the head of the
// queue. The queued player becomes red, the caller black.
func (server *MatchmakingServer) UnrankedHandler(writer http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	authSession, err := server.authServer.GetUserSession(ctx, writer, req)
	if err != nil {
		http.Error(writer, "No session found", http.StatusUnauthorized)
		return
	}

	server.queueLock.Lock()
	if len(server.queue) > 0 {
		opponent := server.queue[0]
		server.queue = server.queue[1:]
		server.queueLock.Unlock()

		gameId := server.gameServer.NewSession(opponent.id, authSession.UserID)

		bytes, err := json.Marshal(QueueResponse{Found: true, GameId: gameId.String()})
		if err != nil {
			server.queueLock.Lock()
			server.queue = append(server.queue, opponent)
			server.queueLock.Unlock()
			writer.WriteHeader(http.StatusInternalServerError)
			return
		}

		writer.Header().Add("Content-Type", "application/json")
		writer.Write(bytes)

		opponent.Conn.Write(ctx, websocket.MessageText, bytes)
		opponent.closeNow(ctx, nil)
		return
	}
	server.queueLock.Unlock()

	bytes, err := json.Marshal(QueueResponse{Found: false})
	if err != nil {
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	writer.Header().Add("Content-Type", "application/json")
	writer.Write(bytes)
}

func (server *MatchmakingServer) UnrankedQueueHandler(writer http.ResponseWriter, req *http.Request) {
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

func (server *MatchmakingServer) removeFromQueue(id uuid.UUID) {
	server.queueLock.Lock()
	defer server.queueLock.Unlock()
	for i, waiting := range server.queue {
		if waiting.id == id {
			server.queue = append(server.queue[:i], server.queue[i+1:]...)
			return
		}
	}
}

// Subscribe accepts the WebSocket connection and parks the caller in
// the unranked queue until someone pairs with them.
func (server *MatchmakingServer) Subscribe(ctx context.Context, writer http.ResponseWriter, req *http.Request) error {
	authSession, err := server.authServer.GetUserSession(ctx, writer, req)
	if err != nil {
		writer.WriteHeader(http.StatusUnauthorized)
		return err
	}

	conn, err := websocket.Accept(writer, req, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "client subscribed to unranked queue",
		slog.String("id", authSession.UserID.String()))

	player := newPlayer(authSession.UserID, conn, server)

	server.queueLock.Lock()
	server.queue = append(server.queue, player)
	server.queueLock.Unlock()

	ctx = context.WithoutCancel(ctx)
	go player.initWrite(ctx)

	return nil
}

const (
	pongWait     = 5 * time.Second
	pingInterval = (pongWait * 9) / 10
)

func (player *player) closeNow(ctx context.Context, err error) {
	if player.closed {
		return
	}
	player.closed = true

	if player.doneChannel != nil {
		select {
		case player.doneChannel <- struct{}{}:
		default:
		}
	}

	slog.Info("closing")
	if err != nil {
		logError(ctx, err)
	}
	player.Conn.CloseNow()
	player.server.removeFromQueue(player.id)
}

func (player *player) initWrite(ctx context.Context) {
	pinger := time.NewTicker(pingInterval)
	var err error
	defer pinger.Stop()
	defer player.closeNow(ctx, err)

	for {
		select {
		case <-player.doneChannel:
			return
		case <-pinger.C:
			slog.DebugContext(ctx, "pinging")
			pingCtx, cancel := context.WithTimeout(ctx, pongWait)
			pingErr := player.Conn.Ping(pingCtx)
			cancel()
			if pingErr != nil {
				err = pingErr
				return
			}
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}
