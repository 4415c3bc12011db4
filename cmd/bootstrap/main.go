// Package main 初始化数据库表结构
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"shop-copy-ai-api/internal/config"
	"shop-copy-ai-api/internal/domain/entity"
	"shop-copy-ai-api/internal/infrastructure/persistence/postgres"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer client.Close()

	if err := client.Ping(context.Background()); err != nil {
		log.Fatalf("failed to ping postgres: %v", err)
	}

	fmt.Println("Migrating schema...")
	if err := client.AutoMigrate(
		&entity.Merchant{},
		&entity.CreditTransaction{},
		&entity.Description{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	fmt.Println("Bootstrap completed successfully.")
}
