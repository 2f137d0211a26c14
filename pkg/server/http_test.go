package server

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"smallbiznis-promotion/pkg/config"
)

func TestListenAddr(t *testing.T) {
	require.Equal(t, ":8080", listenAddr("8080"))
	require.Equal(t, "127.0.0.1:8080", listenAddr("127.0.0.1:8080"))
}

func TestNewHttpServerWithoutTLS(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Addr = "9090"
	cfg.Server.ReadTimeout = 5 * time.Second

	srv := NewHttpServer(Params{Config: cfg, Engine: gin.New()})
	require.Equal(t, ":9090", srv.server.Addr)
	require.Equal(t, 5*time.Second, srv.server.ReadTimeout)
	require.Nil(t, srv.server.TLSConfig)
}
