// cmd/pontoon-server/main.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/pontoon/internal/config"
	"github.com/jason-s-yu/pontoon/internal/middleware"
	"github.com/jason-s-yu/pontoon/internal/registry"
	"github.com/jason-s-yu/pontoon/internal/server"
)

func main() {
	logger := logrus.New()
	if level, err := logrus.ParseLevel(config.GetEnv("LOG_LEVEL", "info")); err == nil {
		logger.SetLevel(level)
	}

	gs := server.NewGameServer(logger)

	mux := http.NewServeMux()
	mux.Handle("/game", middleware.LogMiddleware(logger)(gs.Handler()))

	port := config.GamePort()
	httpSrv := &http.Server{Addr: ":" + strconv.Itoa(port), Handler: mux}

	go func() {
		logger.Infof("pontoon server listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server exited: %v", err)
		}
	}()

	// announce ourselves to the directory service; best effort, the server
	// is still reachable by explicit address if the registry is down
	hbCtx, hbCancel := context.WithCancel(context.Background())
	defer hbCancel()
	self := registry.Host{Host: config.GetEnv("PONTOON_HOST", "localhost"), Port: port}
	registryAddr := config.RegistryAddr()
	if err := registry.Register(hbCtx, registryAddr, self); err != nil {
		logger.Warnf("could not register with directory service: %v", err)
	}
	ttl := time.Duration(config.RegistryTTLSec()) * time.Second
	go registry.Heartbeat(hbCtx, registryAddr, self, ttl/3, logger)

	// command loop: quit/q shuts down cleanly, anything else is an error
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch scanner.Text() {
		case "quit", "q":
			shutdown(logger, gs, httpSrv, hbCancel)
			return
		case "":
		default:
			fmt.Printf("unrecognized command: %q\n", scanner.Text())
		}
	}
	shutdown(logger, gs, httpSrv, hbCancel)
}

func shutdown(logger *logrus.Logger, gs *server.GameServer, httpSrv *http.Server, hbCancel context.CancelFunc) {
	logger.Info("shutting down")
	hbCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := gs.Shutdown(ctx); err != nil {
		logger.Warnf("session shutdown: %v", err)
	}
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	logger.Info("all sessions joined, goodbye")
}
