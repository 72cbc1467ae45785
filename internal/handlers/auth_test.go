package handlers

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreWarnsOnDefaultSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	store := newSessionStore()
	require.NotNil(t, store)
	assert.Contains(t, buf.String(), "SESSION_SECRET")
}

func TestSessionStoreUsesEnvSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "per-deployment-secret")

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	store := newSessionStore()
	require.NotNil(t, store)
	assert.Empty(t, buf.String())
}
