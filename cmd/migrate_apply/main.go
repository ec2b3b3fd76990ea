package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"codeleague/internal/db"
	"codeleague/internal/logger"
	"codeleague/internal/migrations"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("LOG_LEVEL"), false)

	apply := flag.Bool("apply", false, "apply migrations")
	flag.Parse()

	if !*apply {
		names, err := migrations.List()
		if err != nil {
			logger.Fatal("list migrations", "error", err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	pool := db.Connect(dsn)
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	applied, err := migrations.Apply(ctx, pool)
	if err != nil {
		logger.Fatal("migration failed", "error", err)
	}
	for _, name := range applied {
		fmt.Printf("applied %s\n", name)
	}
}
