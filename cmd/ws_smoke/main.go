// Command ws_smoke connects to a running server's websocket, optionally triggers a
// manual refresh, and prints the events it receives.
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"codeleague/internal/logger"
	"codeleague/internal/service"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

func main() {
	userID := flag.Int64("user", 1, "user id to authenticate as")
	refresh := flag.Bool("refresh", true, "POST /api/v1/me/refresh after connecting")
	wait := flag.Duration("wait", 10*time.Second, "how long to listen for events")
	flag.Parse()

	_ = godotenv.Load()
	logger.Init("info", false)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal("JWT_SECRET not set")
	}
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	service.InitJWT(secret)
	token, err := service.GenerateJWT(*userID)
	if err != nil {
		logger.Fatal("generate token", "error", err)
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := "127.0.0.1:" + port
	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws?token=%s", base, token), nil)
	if err != nil {
		logger.Fatal("dial", "error", err)
	}
	defer conn.Close()

	if *refresh {
		go triggerRefresh("http://"+base+"/api/v1/me/refresh", token)
	}

	deadline := time.Now().Add(*wait)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var event map[string]any
		if err := sonic.Unmarshal(msg, &event); err != nil {
			logger.Warn("non-json frame", "raw", string(msg))
			continue
		}
		logger.Info("event", "type", event["type"], "raw", string(msg))
	}

	logger.Info("smoke test finished")
}

func triggerRefresh(url, token string) {
	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		logger.Error("build refresh request", "error", err)
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.Error("refresh request", "error", err)
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	logger.Info("refresh response", "status", resp.StatusCode, "body", string(body))
}
