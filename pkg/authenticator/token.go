package authenticator

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type standardClaims struct {
	jwt.RegisteredClaims
	Object json.RawMessage `json:"obj,omitempty"`
}

type jwtEngine struct {
	secret  string
	counter int64
	lock    sync.Mutex
}

func NewTokenEngine(secret string) TokenEngine {
	return &jwtEngine{secret: secret}
}

func (e *jwtEngine) Generate(expiration time.Duration, obj any) (string, error) {
	e.lock.Lock()
	e.counter++
	counter := e.counter
	e.lock.Unlock()

	b, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := standardClaims{
		Object: b,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			ID:        strconv.FormatInt(counter, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(e.secret))
}

func (e *jwtEngine) Verify(token string, obj any) error {
	var claims standardClaims
	_, err := jwt.ParseWithClaims(
		token, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(e.secret), nil
		},
	)
	if err != nil {
		return err
	}

	return json.Unmarshal(claims.Object, obj)
}
