// cmd/pontoon-registry/main.go
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
	"github.com/jason-s-yu/pontoon/internal/registry"
)

func main() {
	logger := logrus.New()
	if level, err := logrus.ParseLevel(config.GetEnv("LOG_LEVEL", "info")); err == nil {
		logger.SetLevel(level)
	}

	ttl := time.Duration(config.RegistryTTLSec()) * time.Second

	var store registry.Store
	if addr := config.GetEnv("REGISTRY_REDIS_ADDR", ""); addr != "" {
		rs, err := registry.NewRedisStore(addr, config.GetEnvInt("REGISTRY_REDIS_DB", 0), ttl)
		if err != nil {
			logger.Fatalf("redis store: %v", err)
		}
		defer rs.Close()
		store = rs
		logger.Infof("using redis host store at %s", addr)
	} else {
		store = registry.NewMemoryStore(ttl)
	}

	svc := registry.NewService(store, logger)
	httpSrv := &http.Server{
		Addr:    ":" + strconv.Itoa(config.RegistryPort()),
		Handler: svc.Routes(),
	}

	go func() {
		logger.Infof("directory service listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("registry exited: %v", err)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch scanner.Text() {
		case "quit", "q":
			shutdown(logger, httpSrv)
			return
		case "":
		default:
			fmt.Printf("unrecognized command: %q\n", scanner.Text())
		}
	}
	shutdown(logger, httpSrv)
}

func shutdown(logger *logrus.Logger, httpSrv *http.Server) {
	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
}
