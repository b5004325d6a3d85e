package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// kioskgen pushes batches of fake sale transactions at a running sync
// server, simulating a kiosk flushing its local queue.

type orderItem struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Qty       int64  `json:"qty"`
	LineTotal int64  `json:"line_total"`
}

type order struct {
	OrderID       string      `json:"order_id"`
	KioskID       string      `json:"kiosk_id"`
	CreatedAtUTC  string      `json:"created_at_utc"`
	Total         int64       `json:"total"`
	PaymentMethod string      `json:"payment_method"`
	PaymentStatus string      `json:"payment_status"`
	Items         []orderItem `json:"items"`
}

type uploadRequest struct {
	KioskID string  `json:"kiosk_id"`
	Orders  []order `json:"orders"`
}

var menu = []struct {
	id    string
	name  string
	price int64
}{
	{"coffee_01", "Americano", 3000},
	{"coffee_02", "Latte", 3500},
	{"dessert_01", "Cheesecake", 4500},
}

func main() {
	addr := flag.String("addr", "http://localhost:3000", "sync server base URL")
	kioskID := flag.String("kiosk", "KIOSK-001", "kiosk identifier")
	count := flag.Int("n", 10, "orders per batch")
	batches := flag.Int("batches", 1, "number of batches to send")
	apiKey := flag.String("key", os.Getenv("KIOSK_API_KEY"), "upload API key")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	for b := 0; b < *batches; b++ {
		req := uploadRequest{
			KioskID: *kioskID,
			Orders:  make([]order, 0, *count),
		}
		for i := 0; i < *count; i++ {
			req.Orders = append(req.Orders, fakeOrder(*kioskID))
		}

		if err := send(client, *addr, *apiKey, req); err != nil {
			slog.Error("Batch upload failed", "batch", b, "error", err)
			os.Exit(1)
		}
	}
}

func fakeOrder(kioskID string) order {
	o := order{
		OrderID:       uuid.NewString(),
		KioskID:       kioskID,
		CreatedAtUTC:  gofakeit.DateRange(time.Now().UTC().Add(-72*time.Hour), time.Now().UTC()).Format(time.RFC3339),
		PaymentMethod: "MOCK",
		PaymentStatus: "PAID",
	}

	itemCount := 1 + rand.Intn(3)
	for i := 0; i < itemCount; i++ {
		entry := menu[rand.Intn(len(menu))]
		qty := int64(1 + rand.Intn(3))
		item := orderItem{
			ItemID:    entry.id,
			Name:      entry.name,
			UnitPrice: entry.price,
			Qty:       qty,
			LineTotal: entry.price * qty,
		}
		o.Items = append(o.Items, item)
		o.Total += item.LineTotal
	}

	return o
}

func send(client *http.Client, addr, apiKey string, payload uploadRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, addr+"/orders/upload", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, respBody)
	}

	slog.Info("Batch uploaded", "orders", len(payload.Orders), "response", string(respBody))

	return nil
}
