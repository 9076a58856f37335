// Package main runs a demo WebSocket client against the realtime alert feed.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Seed demo accounts and log in as the demo tourist
	seedReq, _ := http.NewRequest(http.MethodPost, base+"/api/v1/seed-data", nil)
	if _, err := http.DefaultClient.Do(seedReq); err != nil {
		log.Fatal(err)
	}
	login := []byte(`{"email":"tourist@test.com","password":"password123","role":"tourist"}`)
	resp, err := http.Post(base+"/api/v1/auth/login", "application/json", bytes.NewReader(login))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var loginResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		log.Fatal(err)
	}

	// Connect to the police feed to watch alerts arrive
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/api/v1/ws/police"}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %s", msg)
		}
	}()

	// Trigger a panic alert as the tourist
	time.Sleep(500 * time.Millisecond)
	body := []byte(`{"location":{"lat":28.61,"lng":77.21},"message":"demo panic"}`)
	panicReq, _ := http.NewRequest(http.MethodPost, base+"/api/v1/tourist/panic", bytes.NewReader(body))
	panicReq.Header.Set("Content-Type", "application/json")
	panicReq.Header.Set("Authorization", "Bearer "+loginResp.AccessToken)
	if _, err := http.DefaultClient.Do(panicReq); err != nil {
		log.Fatal(err)
	}

	// Wait briefly to receive the fan-out
	select {
	case <-time.After(2 * time.Second):
	case <-done:
	}
}
