package ws

import (
	"encoding/json"
	"log"
	"sync"

	"ethicrawler/internal/models"
)

// Client is one websocket connection watching a single invoice.
type Client struct {
	PaymentID string
	Send      chan []byte
	Hub       *Hub // set by Register so Close can unregister
	mu        sync.Mutex
	closed    bool
}

func NewClient(paymentID string) *Client {
	return &Client{PaymentID: paymentID, Send: make(chan []byte, 16)}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	if c.Hub != nil {
		c.Hub.unregister(c)
	}
}

// Event is pushed to watchers of an invoice.
type Event struct {
	Type       string `json:"type"`
	PaymentID  string `json:"payment_id"`
	Status     string `json:"status"`
	ExpiresAt  int64  `json:"expires_at,omitempty"`
	VerifiedAt int64  `json:"verified_at,omitempty"`
	TxHash     string `json:"tx_hash,omitempty"`
}

// Hub maintains the watchers of each invoice and fans events out to them.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*Client]struct{}
	byPayment map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		byPayment: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.Hub = h
	h.clients[c] = struct{}{}
	if h.byPayment[c.PaymentID] == nil {
		h.byPayment[c.PaymentID] = make(map[*Client]struct{})
	}
	h.byPayment[c.PaymentID][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	if m := h.byPayment[c.PaymentID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byPayment, c.PaymentID)
		}
	}
}

// Broadcast sends payload to every watcher of paymentID. Slow clients drop messages.
func (h *Hub) Broadcast(paymentID string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[WS] marshal event for %s: %v", paymentID, err)
		return
	}
	h.mu.RLock()
	m := h.byPayment[paymentID]
	clients := make([]*Client, 0, len(m))
	for c := range m {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		c.mu.Lock()
		if !c.closed {
			select {
			case c.Send <- data:
			default:
			}
		}
		c.mu.Unlock()
	}
}

// InvoicePaid satisfies service.Notifier.
func (h *Hub) InvoicePaid(inv *models.Invoice, rec *models.PaymentRecord) {
	h.Broadcast(inv.PaymentID, Event{
		Type:       "invoice_paid",
		PaymentID:  inv.PaymentID,
		Status:     inv.Status,
		VerifiedAt: rec.VerifiedAt,
		TxHash:     rec.TxHash,
	})
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
