package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessageAppendsLine(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	ev := UserRegisteredEvent{UserID: 7, Username: "alice", Email: "a@example.com", BusinessID: 3, RegisteredAt: "2024-01-02T03:04:05Z"}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, handleMessage(dir, body))
	require.NoError(t, handleMessage(dir, body))

	raw, err := os.ReadFile(filepath.Join(dir, RegistrationLogFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `[2024-01-02T03:04:05Z] User registered | user_id=7 | username="alice" | email="a@example.com" | business_id=3`, lines[0])
}

func TestHandleMessageRejectsBadPayload(t *testing.T) {
	dir := t.TempDir()

	assert.Error(t, handleMessage(dir, []byte("{not json")))
	assert.Error(t, handleMessage(dir, []byte(`{"username":"bob"}`)))

	_, err := os.Stat(filepath.Join(dir, RegistrationLogFile))
	assert.True(t, os.IsNotExist(err))
}
