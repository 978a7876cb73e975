package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/propbid/auction-backend/internal/config"
	"github.com/propbid/auction-backend/internal/db"
	"github.com/propbid/auction-backend/internal/model"
	"github.com/propbid/auction-backend/internal/server"
)

// Set via -ldflags at build time.
var (
	gitSHA    string
	buildTime string
)

func main() {
	_ = godotenv.Load()

	srv := server.New(nil, gitSHA, buildTime)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	errCh := make(chan error, 1)

	go func() {
		log.Printf("starting server on %s", addr)
		errCh <- srv.Start(addr)
	}()

	// Connect asynchronously so the server comes up before the database;
	// repositories answer ErrDBNotReady until injection happens.
	go func() {
		cfg, err := config.Load()
		if err != nil {
			log.Printf("config load error: %v", err)
			return
		}
		conn, err := db.Connect(cfg)
		if err != nil {
			log.Printf("db connect error: %v", err)
			return
		}
		srv.SetDB(conn)
		if err := conn.AutoMigrate(
			&model.AuctionProperty{},
			&model.Bid{},
			&model.AuctionWinner{},
			&model.AuctionEvent{},
		); err != nil {
			log.Printf("auto migrate error: %v", err)
		}
	}()

	if err := <-errCh; err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
