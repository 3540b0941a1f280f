package main

import (
	"context"
	"os"

	"github.com/giftpropaganda/news-backend/database"
	"github.com/giftpropaganda/news-backend/server"
	"github.com/giftpropaganda/news-backend/utils/dotenv"
	Flag "github.com/giftpropaganda/news-backend/utils/flag"
	Logger "github.com/giftpropaganda/news-backend/utils/log"
)

func main() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	Flag.ParseFlags()

	// absent DATABASE_URL falls back to the embedded store, so dev and
	// degraded environments stay operable
	store, err := database.Open(os.Getenv("DATABASE_URL"))
	if err != nil {
		Logger.Log.Fatalf("invalid database configuration: %v", err)
	}

	ctx := context.Background()
	if err := store.AwaitReady(ctx); err != nil {
		Logger.Log.Fatalf("database unreachable, aborting startup: %v", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		Logger.Log.Fatalf("schema verification failed, refusing to serve: %v", err)
	}

	router := server.New(store)

	Logger.Log.Info("===== News Storage Server Started =====")
	if err := router.Run(*Flag.Addr); err != nil {
		Logger.Log.Fatalf("server stopped: %v", err)
	}
}
