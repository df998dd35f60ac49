package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ethicrawler/internal/domain"
	"ethicrawler/internal/models"
	"ethicrawler/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// InvoiceLookup is the read side of the invoice manager.
type InvoiceLookup interface {
	GetInvoice(ctx context.Context, paymentID string) (*models.Invoice, error)
}

// UpgradeInvoiceWS streams status events for the invoice in :payment_id.
// The first message is a snapshot of the invoice as currently stored. The
// watcher is registered before the snapshot is read, so a payment landing
// in between is still delivered as an event after it.
func UpgradeInvoiceWS(invoices InvoiceLookup, clock domain.Clock, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		paymentID := c.Param("payment_id")
		client := NewClient(paymentID)
		hub.Register(client)
		defer client.Close()

		inv, err := invoices.GetInvoice(c.Request.Context(), paymentID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found", "code": service.CodeNotFound})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "invoice lookup failed"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		snapshot := Event{
			Type:      "invoice",
			PaymentID: inv.PaymentID,
			Status:    inv.EffectiveStatus(clock.Now().Unix()),
			ExpiresAt: inv.ExpiresAt,
		}
		if err := conn.WriteJSON(snapshot); err != nil {
			return
		}
		go writePump(client, conn)
		readPump(conn)
	}
}

// writePump copies messages from client.Send to the connection.
func writePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func readPump(conn *websocket.Conn) {
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}
}
