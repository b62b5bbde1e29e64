package tg

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"
)

const (
	probeTimeout = 3 * time.Second
	proxyTimeout = 5 * time.Second
)

// checkConnectivity только пишет в лог: запуск по результатам не прерывается
func checkConnectivity(ctx context.Context, logger *slog.Logger, proxyCfg *ProxyConfig) {
	logger = logger.With("check", "connectivity")
	if probe(ctx, "tcp4", "8.8.8.8:53", probeTimeout) == nil {
		logger.Info("IPv4 OK")
	} else {
		logger.Warn("IPv4 seems not working")
	}
	if probe(ctx, "tcp6", "[2606:4700:4700::1111]:53", probeTimeout) == nil {
		logger.Info("IPv6 OK")
	} else {
		logger.Warn("IPv6 seems not working")
	}
	checkProxy(ctx, logger, proxyCfg)
}

func checkProxy(ctx context.Context, logger *slog.Logger, proxyCfg *ProxyConfig) {
	if proxyCfg == nil || !proxyCfg.Enabled {
		logger.Info("proxy disabled, skipping check")
		return
	}

	addr := net.JoinHostPort(proxyCfg.Server, strconv.Itoa(int(proxyCfg.Port)))
	for _, network := range proxyNetworks(proxyCfg.Server) {
		err := probe(ctx, network, addr, proxyTimeout)
		if err == nil {
			logger.Info("proxy reachable", "addr", addr, "network", network)
			return
		}
		logger.Warn("proxy probe failed", "addr", addr, "network", network, "error", err)
	}
	logger.Error("proxy unreachable", "addr", addr)
}

// proxyNetworks: для IP-литерала одна сеть, для hostname сначала IPv6, потом IPv4
func proxyNetworks(host string) []string {
	ip := net.ParseIP(host)
	switch {
	case ip == nil:
		return []string{"tcp6", "tcp4"}
	case ip.To4() != nil:
		return []string{"tcp4"}
	default:
		return []string{"tcp6"}
	}
}

func probe(ctx context.Context, network, addr string, timeout time.Duration) error {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return err
	}
	return conn.Close()
}
