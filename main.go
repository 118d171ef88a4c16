package main

import (
	"context"
	"flag"
	"log"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"github.com/yi-nology/blender_board/biz/dal/db"
	"github.com/yi-nology/blender_board/biz/middleware"
	"github.com/yi-nology/blender_board/biz/router"
	"github.com/yi-nology/blender_board/biz/service"
	"github.com/yi-nology/blender_board/pkg/config"
	"github.com/yi-nology/blender_board/pkg/database"
	"github.com/yi-nology/blender_board/pkg/lock"
	redisclient "github.com/yi-nology/blender_board/pkg/redis"
	"github.com/yi-nology/blender_board/pkg/storage"
	"github.com/yi-nology/blender_board/pkg/util"
)

var (
	configPath  = flag.String("config", "config.yaml", "Path to config file")
	migrateOnly = flag.Bool("migrate", false, "Apply database migrations and exit")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	hlog.SetLevel(util.ParseLogLevel(cfg.Log.Level))

	conn, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	applied, err := db.Migrate(ctx, conn)
	if err != nil {
		_ = database.Close(conn)
		log.Fatalf("migrate database: %v", err)
	}
	hlog.Infof("database ready (%s), %d migration(s) applied", cfg.Database.Driver, len(applied))
	if *migrateOnly {
		_ = database.Close(conn)
		return
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		_ = database.Close(conn)
		log.Fatalf("init storage: %v", err)
	}

	svc := service.NewService(conn, store, service.Options{
		ImageMaxSize: cfg.Upload.ImageMaxSize,
		ModelMaxSize: cfg.Upload.ModelMaxSize,
	})
	defer func() {
		if err := svc.Close(); err != nil {
			hlog.Warnf("close database: %v", err)
		}
	}()

	rdb, err := redisclient.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("connect redis: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
		hlog.Infof("write lock enabled on %s key %s", cfg.Redis.Address, cfg.Redis.LockKey)
	}

	h := router.NewServer(cfg.Server)
	h.Use(middleware.Recovery(), middleware.Logging(), middleware.CORS(&cfg.CORS))
	router.RegisterMediaRoutes(h, svc, middleware.WriteLock(lock.FromConfig(rdb, cfg.Redis)))

	h.Spin()
}
