package authenticator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xbooster/backend/pkg/authenticator"
)

func TestTokenEngine(t *testing.T) {
	engine := authenticator.NewTokenEngine("secret")
	token, err := engine.Generate(time.Minute, "abc")
	require.NoError(t, err)

	var msg string
	err = engine.Verify(token, &msg)
	require.NoError(t, err)
	require.Equal(t, "abc", msg)
}

func TestTokenEngineExpiration(t *testing.T) {
	engine := authenticator.NewTokenEngine("secret")
	token, err := engine.Generate(-time.Minute, "abc")
	require.NoError(t, err)

	var msg string
	err = engine.Verify(token, &msg)
	require.Error(t, err)
}

func TestTokenEngineObject(t *testing.T) {
	type object struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	engine := authenticator.NewTokenEngine("secret")
	token, err := engine.Generate(time.Minute, object{ID: "user1", Name: "User One"})
	require.NoError(t, err)

	var got object
	err = engine.Verify(token, &got)
	require.NoError(t, err)
	require.Equal(t, object{ID: "user1", Name: "User One"}, got)
}
