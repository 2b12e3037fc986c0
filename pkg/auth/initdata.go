package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// WebAppUser описывает пользователя из поля user строки initData
type WebAppUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// InitDataVerifier проверяет подпись строки initData мини-приложения Telegram.
// Ключ подписи выводится из токена бота один раз при создании.
type InitDataVerifier struct {
	secretKey []byte
}

// NewInitDataVerifier создает верификатор для заданного токена бота
func NewInitDataVerifier(botToken string) *InitDataVerifier {
	// secret = HMAC_SHA256(key="WebAppData", message=botToken)
	mac := hmac.New(sha256.New, []byte("WebAppData"))
	mac.Write([]byte(botToken))
	return &InitDataVerifier{secretKey: mac.Sum(nil)}
}

// Verify проверяет подпись initData и возвращает пользователя из нее.
// Подпись сверяется в константное время; любое расхождение, отсутствие
// hash или отсутствие user.id считается ошибкой проверки.
func (v *InitDataVerifier) Verify(initData string) (*WebAppUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("malformed init data: %w", err)
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return nil, fmt.Errorf("init data has no hash")
	}
	values.Del("hash")

	// Канонизация: пары key=value, отсортированные по ключу,
	// склеенные через '\n'
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}
	checkString := strings.Join(pairs, "\n")

	mac := hmac.New(sha256.New, v.secretKey)
	mac.Write([]byte(checkString))
	wantHash := mac.Sum(nil)

	gotHashBytes, err := hex.DecodeString(gotHash)
	if err != nil {
		return nil, fmt.Errorf("init data hash is not hex")
	}
	if !hmac.Equal(wantHash, gotHashBytes) {
		return nil, fmt.Errorf("init data signature mismatch")
	}

	userJSON := values.Get("user")
	if userJSON == "" {
		return nil, fmt.Errorf("init data has no user")
	}
	var user WebAppUser
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, fmt.Errorf("malformed user in init data: %w", err)
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("init data user has no id")
	}

	return &user, nil
}
