package main

import (
	"context"
	"crypto/tls"
	"flag"
	"log"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"

	"github.com/yi-nology/blender_board/biz/dal/db"
	"github.com/yi-nology/blender_board/biz/service"
	"github.com/yi-nology/blender_board/pkg/config"
	"github.com/yi-nology/blender_board/pkg/database"
	"github.com/yi-nology/blender_board/pkg/storage"
)

// Seed demo media: go run ./script/seed -models=14 -images=24

var (
	configPath = flag.String("config", "config.yaml", "Path to config file")
	modelCount = flag.Int("models", 14, "Number of models to seed")
	imageCount = flag.Int("images", 24, "Number of images to seed")
	offline    = flag.Bool("offline", false, "Generate placeholder files instead of downloading samples")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	conn, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer func() { _ = database.Close(conn) }()

	if _, err := db.Migrate(ctx, conn); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	store, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}
	svc := service.NewService(conn, store, service.Options{
		ImageMaxSize: cfg.Upload.ImageMaxSize,
		ModelMaxSize: cfg.Upload.ModelMaxSize,
	})

	fetch := OfflineFetcher()
	if !*offline {
		c, err := client.NewClient(
			client.WithDialer(standard.NewDialer()),
			client.WithTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12}),
			client.WithDialTimeout(10*time.Second),
			client.WithClientReadTimeout(time.Minute),
		)
		if err != nil {
			log.Fatalf("init http client: %v", err)
		}
		fetch = HTTPFetcher(c, 3)
	}

	stats, err := NewSeeder(conn, svc, fetch).Run(ctx, *modelCount, *imageCount)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Println("Seed completed.")
	log.Printf("models: %d", stats.Models)
	log.Printf("images: %d", stats.Images)
	log.Printf("image_model_links: %d", stats.Links)
}
