// Smoke client: signs in over HTTP, opens the live task socket, creates a
// timed task, and prints the snapshots and ticks the server pushes back.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	email := os.Getenv("SMOKE_EMAIL")
	if email == "" {
		email = "smoke@example.com"
	}
	password := os.Getenv("SMOKE_PASSWORD")
	if password == "" {
		password = "smoke-pass"
	}

	base := fmt.Sprintf("http://127.0.0.1:%s", port)

	token, err := signIn(base, email, password)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	wsURL := fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s", port, token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	minutes := int64(1)
	seconds := minutes * 60
	start := time.Now().UnixMilli()
	add := map[string]any{
		"type": "add",
		"task": map[string]any{
			"title":       fmt.Sprintf("smoke task %d", time.Now().Unix()),
			"description": "created by ws_smoke",
			"status":      "open",
			"timer":       seconds,
			"timer_start": start,
		},
	}
	if err := conn.WriteJSON(add); err != nil {
		log.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("read: %v", err)
		}
		fmt.Println(string(msg))
	}
}

func signIn(base, email, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})

	// try sign-in first, fall back to sign-up for a fresh database
	for _, path := range []string{"/api/v1/auth/signin", "/api/v1/auth/signup"} {
		resp, err := http.Post(base+path, "application/json", bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		var out struct {
			Token string `json:"token"`
			Error string `json:"error"`
		}
		err = json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()
		if err != nil {
			return "", err
		}
		if out.Token != "" {
			return out.Token, nil
		}
		log.Printf("%s: %s", path, out.Error)
	}
	return "", fmt.Errorf("could not obtain a session token")
}
