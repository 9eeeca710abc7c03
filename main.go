package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/Ndymario/Checkers-Framework/auth"
	"github.com/Ndymario/Checkers-Framework/env"
	"github.com/Ndymario/Checkers-Framework/game_server"
	"github.com/Ndymario/Checkers-Framework/matchmaking_server"
)

func main() {
	log.SetFlags(0)

	err := run()
	if err != nil {
		log.Fatal(err)
	}
}

func getAddr() string {
	if len(os.Args) < 2 {
		return "localhost:3000"
	}

	return os.Args[1]
}

type MiddlewareServer struct {
	ServeMux *http.ServeMux
}

const CorsHeader = "Access-Control-Allow-Origin"
const AllowAll = "*"

func (server *MiddlewareServer) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	writer.Header().Add(CorsHeader, AllowAll)
	server.ServeMux.ServeHTTP(writer, req)
}

// run wires auth, the game server and matchmaking together and serves
// them until interrupted.
func run() error {
	appEnv, err := env.GetEnv()
	if err != nil {
		return err
	}

	authServer := auth.NewAuthServer(appEnv)
	gameServer := game_server.NewGameServer(authServer, appEnv)
	matchmakingServer := matchmaking_server.NewMatchmakingServer(gameServer, authServer)

	mux := http.NewServeMux()
	mux.Handle("/auth/", http.StripPrefix("/auth", authServer))
	mux.Handle("/game/", http.StripPrefix("/game", gameServer))
	mux.Handle("/matchmaking/", http.StripPrefix("/matchmaking", matchmakingServer))

	middlewareServer := MiddlewareServer{ServeMux: mux}

	addr := getAddr()
	httpServer := &http.Server{
		Handler:      &middlewareServer,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		Addr:         addr,
	}

	httpServer.RegisterOnShutdown(gameServer.OnShutdown)
	httpServer.RegisterOnShutdown(matchmakingServer.OnShutdown)

	errc := make(chan error, 1)
	go func() {
		log.Printf("listening on http://%v", addr)
		errc <- httpServer.ListenAndServe()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		log.Printf("failed to serve: %v", err)
	case sig := <-sigs:
		log.Printf("terminating: %v", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
