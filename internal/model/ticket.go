package model

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/lithammer/shortuuid/v3"
)

// TicketStatus 票券狀態類型
type TicketStatus string

const (
	TicketStatusValid     TicketStatus = "valid"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// Ticket 一張入場票券。屬於唯一一筆訂單, 票號與兌換碼全域唯一且不重用。
type Ticket struct {
	ID             int          `json:"id" db:"id"`
	OrderID        int          `json:"order_id" db:"order_id"`
	EventID        string       `json:"event_id" db:"event_id"`
	TicketNumber   string       `json:"ticket_number" db:"ticket_number"`
	RedemptionCode string       `json:"redemption_code" db:"redemption_code"`
	Status         TicketStatus `json:"status" db:"status"`
	RedeemedAt     *time.Time   `json:"redeemed_at,omitempty" db:"redeemed_at"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

// TicketResponse 票券響應。兌換碼視同憑證, 只在本人訂單查詢時完整回傳。
type TicketResponse struct {
	ID             int    `json:"id"`
	TicketNumber   string `json:"ticket_number"`
	RedemptionCode string `json:"redemption_code"`
	Status         string `json:"status"`
}

const ticketNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateTicketNumber 產生可排序的票號: 年份 + 時間戳尾碼 + 隨機尾綴。
// 唯一性最終由資料庫唯一索引保證, 這裡只負責低碰撞率。
func GenerateTicketNumber(now time.Time) string {
	ts := fmt.Sprintf("%d", now.UnixMilli())
	if len(ts) > 8 {
		ts = ts[len(ts)-8:]
	}

	suffix := make([]byte, 5)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(ticketNumberAlphabet))))
		if err != nil {
			panic(err)
		}
		suffix[i] = ticketNumberAlphabet[n.Int64()]
	}

	return fmt.Sprintf("TKT-%d-%s%s", now.Year(), ts, suffix)
}

// GenerateRedemptionCode 產生不可猜測的兌換碼(QR payload)
func GenerateRedemptionCode() string {
	return "QR-" + shortuuid.New()
}

// RedactCode 截斷兌換碼供日誌使用, 完整碼不落日誌
func RedactCode(code string) string {
	if len(code) <= 8 {
		return "****"
	}
	return code[:8] + "****"
}
