package main

import (
	"flag"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"snakepit.tv/engine"
)

func main() {
	port := flag.Int("port", 3001, "Server port")
	configPath := flag.String("config", "config.json", "Game config file (created with defaults if missing)")
	costsPath := flag.String("costs", "costs.json", "Power-up cost file, reloaded on change")
	envPath := flag.String("env", ".env", "Optional .env file")
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime)

	if err := godotenv.Load(*envPath); err != nil && !os.IsNotExist(err) {
		log.Printf("WARNING: could not load %s: %v", *envPath, err)
	}
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, err := engine.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	costs, err := engine.NewCostWatcher(*costsPath)
	if err != nil {
		log.Fatalf("costs: %v", err)
	}
	go func() {
		if err := costs.Watch(nil); err != nil {
			log.Printf("WARNING: cost file not watched: %v", err)
		}
	}()

	token := os.Getenv("SNAKEPIT_API_TOKEN")
	if token == "" {
		token = "secret_token"
		log.Printf("WARNING: SNAKEPIT_API_TOKEN not set, using the default management token")
	}

	srv := engine.NewServer(engine.ServerConfig{
		Game:     cfg,
		APIToken: token,
		Costs:    costs,
	})
	log.Fatal(srv.ListenAndServe(*port))
}
