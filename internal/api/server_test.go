package api

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/prebloom/internal/api/handlers"
	"github.com/wonny/prebloom/pkg/config"
	"github.com/wonny/prebloom/pkg/logger"
)

func TestServerStartShutdown(t *testing.T) {
	cfg := &config.Config{Port: "0", Env: "development"}
	h := handlers.NewCandidatesHandler(handlers.NewResultStore(), nil, nil, logger.Nop())
	server := New(cfg, logger.Nop(), NewRouter(h, logger.Nop()))

	assert.Equal(t, "", server.Addr())

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	require.Eventually(t, func() bool { return server.Addr() != "" }, 2*time.Second, 5*time.Millisecond)

	_, port, err := net.SplitHostPort(server.Addr())
	require.NoError(t, err)

	resp, err := http.Get("http://127.0.0.1:" + port + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))
	assert.NoError(t, <-errCh)
}
