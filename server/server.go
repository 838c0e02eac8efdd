package main

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"
)

const (
	qrSize         = 256
	defaultResults = 20
	maxResults     = 100
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Logger.Debug().Err(err).Msg("write response")
	}
}

// SetupRoutes configures HTTP routes
func SetupRoutes(hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{
			"clients": hub.ClientCount(),
			"battles": hub.battles.Count(),
		})
	})

	// WebSocket endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			Logger.Warn().Err(err).Str("remote", ip).Msg("upgrade")
			return
		}

		hub.TrackConnect(ip)

		client := NewClient(hub, conn, ip)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	})

	mux.HandleFunc("GET /battles", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, hub.battles.List())
	})

	// Invite link for a battle as a PNG QR code
	mux.HandleFunc("GET /battles/{id}/qr", func(w http.ResponseWriter, r *http.Request) {
		b, err := hub.battles.Get(r.PathValue("id"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		link := hub.cfg.PublicURL + "/?battle=" + url.QueryEscape(b.ID)
		png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
		if err != nil {
			Logger.Error().Err(err).Str("battle", b.ID).Msg("encode qr")
			http.Error(w, "qr encode failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	})

	mux.HandleFunc("GET /results", func(w http.ResponseWriter, r *http.Request) {
		if hub.db == nil {
			http.Error(w, "persistence disabled", http.StatusServiceUnavailable)
			return
		}
		limit := defaultResults
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				http.Error(w, "bad limit", http.StatusBadRequest)
				return
			}
			limit = min(n, maxResults)
		}
		rows, err := hub.db.RecentBattles(limit)
		if err != nil {
			Logger.Error().Err(err).Msg("recent battles")
			http.Error(w, "query failed", http.StatusInternalServerError)
			return
		}
		if rows == nil {
			rows = []BattleRow{}
		}
		writeJSON(w, http.StatusOK, rows)
	})

	// Replay of a recorded battle, one snapshot per turn
	mux.HandleFunc("GET /battles/{id}/frames", func(w http.ResponseWriter, r *http.Request) {
		if hub.db == nil {
			http.Error(w, "persistence disabled", http.StatusServiceUnavailable)
			return
		}
		frames, err := hub.db.LoadFrames(r.PathValue("id"))
		if err != nil {
			if errors.Is(err, ErrUnknownState) {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			Logger.Error().Err(err).Msg("load frames")
			http.Error(w, "query failed", http.StatusInternalServerError)
			return
		}
		if len(frames) == 0 {
			http.Error(w, "no frames recorded", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, frames)
	})

	return mux
}
