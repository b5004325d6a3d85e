package kiosk

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/viper"
)

// Static demo catalog served to kiosks. Prices are minor currency units.
type menuItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type menuResponse struct {
	Version      int        `json:"version"`
	Items        []menuItem `json:"items"`
	UpdatedAtUTC string     `json:"updated_at_utc"`
}

type configResponse struct {
	KioskID         string `json:"kiosk_id"`
	SyncIntervalSec int    `json:"sync_interval_sec"`
	IdleTimeoutSec  int    `json:"idle_timeout_sec"`
	ServerTimeUTC   string `json:"server_time_utc"`
}

const menuVersion = 1

var menuItems = []menuItem{
	{ID: "coffee_01", Name: "Americano", Price: 3000},
	{ID: "coffee_02", Name: "Latte", Price: 3500},
	{ID: "dessert_01", Name: "Cheesecake", Price: 4500},
}

// Menu serves the demo catalog.
func Menu(w http.ResponseWriter, r *http.Request) {
	resp := menuResponse{
		Version:      menuVersion,
		Items:        menuItems,
		UpdatedAtUTC: time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Error writing response for menu", "error", err)
	}
}

// Config serves per-kiosk sync settings.
func Config(w http.ResponseWriter, r *http.Request) {
	kioskID := r.URL.Query().Get("kiosk_id")
	if kioskID == "" {
		kioskID = "KIOSK-001"
	}

	syncInterval := viper.GetInt("kiosk.sync_interval_sec")
	if syncInterval == 0 {
		syncInterval = 10
	}
	idleTimeout := viper.GetInt("kiosk.idle_timeout_sec")
	if idleTimeout == 0 {
		idleTimeout = 45
	}

	resp := configResponse{
		KioskID:         kioskID,
		SyncIntervalSec: syncInterval,
		IdleTimeoutSec:  idleTimeout,
		ServerTimeUTC:   time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Error writing response for config", "error", err)
	}
}
