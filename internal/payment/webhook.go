package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "land-steward-backend/pkg/app_errors"
)

// 事件類型。未知型別一律 ack 後忽略, 供應商新增事件不會打壞既有流程。
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentFailed     = "payment_intent.payment_failed"
	EventChargeRefunded    = "charge.refunded"
)

// Event 驗章後的回呼事件
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object EventObject `json:"object"`
	} `json:"data"`
}

// EventObject 事件夾帶的物件。completed 事件帶 session id 與 payment id,
// refund 事件只帶 payment id(退款指向扣款, 不是結帳 session)。
type EventObject struct {
	ID            string `json:"id"`
	PaymentIntent string `json:"payment_intent"`
	CustomerEmail string `json:"customer_email"`
	Metadata      struct {
		OrderID string `json:"order_id"`
	} `json:"metadata"`
}

// signatureTolerance 回呼時間戳容許偏差, 超過視為重放
const signatureTolerance = 5 * time.Minute

// VerifyEvent 以共享密鑰驗證簽章並解析事件。簽章必須對未經處理的原始 payload
// 計算, 任何先 parse 再 re-serialize 的位元組都驗不過, 所以這裡收 []byte。
// 驗不過或 payload 壞掉一律拒絕(fail closed)。
func (c *Client) VerifyEvent(payload []byte, sigHeader string) (*Event, error) {
	return VerifyEvent(payload, sigHeader, c.webhookSecret, time.Now())
}

// VerifyEvent 驗證 `t=<unix>,v1=<hex hmac>` 形式的簽章標頭。
func VerifyEvent(payload []byte, sigHeader, secret string, now time.Time) (*Event, error) {
	if secret == "" {
		return nil, fmt.Errorf("webhook secret not configured")
	}

	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidSignature, err)
	}

	if d := now.Sub(time.Unix(timestamp, 0)); d > signatureTolerance || d < -signatureTolerance {
		return nil, fmt.Errorf("%w: timestamp outside tolerance", apperrors.ErrInvalidSignature)
	}

	expected := ComputeSignature(payload, timestamp, secret)
	matched := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, fmt.Errorf("%w: no matching v1 signature", apperrors.ErrInvalidSignature)
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: malformed payload", apperrors.ErrInvalidSignature)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("%w: missing event type", apperrors.ErrInvalidSignature)
	}

	return &event, nil
}

// ComputeSignature 計算 `<timestamp>.<payload>` 的 HMAC-SHA256, 測試端也用它簽出合法請求
func ComputeSignature(payload []byte, timestamp int64, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeader 組出合法的簽章標頭, 供測試與本地模擬使用
func SignatureHeader(payload []byte, timestamp int64, secret string) string {
	return fmt.Sprintf("t=%d,v1=%s", timestamp, ComputeSignature(payload, timestamp, secret))
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, fmt.Errorf("missing signature header")
	}

	var timestamp int64 = -1
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("bad timestamp")
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp < 0 || len(signatures) == 0 {
		return 0, nil, fmt.Errorf("incomplete signature header")
	}

	return timestamp, signatures, nil
}
