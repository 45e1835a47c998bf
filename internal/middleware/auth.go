package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	authCookieName = "auth_token"
	authCookieTTL  = 30 * 24 * time.Hour

	// UserIDKey gin context 內存放已驗證使用者 id 的 key
	UserIDKey = "userID"
)

// AuthMiddleware 以 HMAC 簽名的 cookie 驗證使用者身分
type AuthMiddleware struct {
	secretKey []byte
}

func NewAuthMiddleware(secret string) *AuthMiddleware {
	key := []byte(secret)
	if len(key) == 0 {
		// 未設定密鑰時隨機產生, 重啟後既有 session 全部失效
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err != nil {
			panic(err)
		}
		key = randomKey
	}

	return &AuthMiddleware{
		secretKey: key,
	}
}

// RequireAuth 驗證 cookie, 沒過直接 401 短路
func (a *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(authCookieName)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
			return
		}

		userID, ok := a.parseToken(cookie)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// SetAuthCookie 登入或註冊成功後發放 session cookie
func (a *AuthMiddleware) SetAuthCookie(c *gin.Context, userID int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(authCookieName, a.signUserID(userID), int(authCookieTTL.Seconds()), "/", "", false, true)
}

// UserID 取出 middleware 放進 context 的使用者 id
func UserID(c *gin.Context) (int, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok
}

func (a *AuthMiddleware) signUserID(userID int) string {
	payload := strconv.Itoa(userID)
	mac := hmac.New(sha256.New, a.secretKey)
	mac.Write([]byte(payload))
	return payload + ":" + hex.EncodeToString(mac.Sum(nil))
}

func (a *AuthMiddleware) parseToken(token string) (int, bool) {
	parts := strings.SplitN(token, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}

	userID, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}

	mac := hmac.New(sha256.New, a.secretKey)
	mac.Write([]byte(parts[0]))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(parts[1])) {
		return 0, false
	}

	return userID, true
}
