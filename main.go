// @title MindConnect API
// @version 1.0
// @description Backend for the MindConnect therapy matching platform.

// @contact.name API Support
// @contact.email support@mindconnect.it

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"
	"mindconnect_backend/internal/app"
	"mindconnect_backend/internal/config"
	"mindconnect_backend/pkg/configwatcher"
	"mindconnect_backend/pkg/logger"
	"path/filepath"
)

func main() {
	configPath := flag.String("config", "configs", "directory holding config.yaml")
	watch := flag.Bool("watch-config", false, "reload configuration on file change")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *watch {
		go configwatcher.WatchConfig(filepath.Join(*configPath, "config.yaml"), application.OnConfigReload)
	}

	application.Run()
}
