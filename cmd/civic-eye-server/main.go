// @title Civic Eye API
// @version 1.0
// @description Trust scoring service for civic issue report photos
// @host localhost:7000
// @BasePath /api
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"civic-eye-server-go/internal/bootstrap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	fmt.Printf("[%s] [INFO] [BOOT] starting civic-eye-server...\n", time.Now().Format("2006-01-02 15:04:05.000"))
	if err := bootstrap.Run(context.Background(), bootstrap.Options{ConfigPath: *configPath}); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "civic-eye-server failed: %v\n", err)
		os.Exit(1)
	}
}
