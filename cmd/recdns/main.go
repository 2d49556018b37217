// Command recdns runs a single-threaded recursive DNS resolver over UDP.
package main

import (
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tkowalski/recdns/internal/buffer"
	"github.com/tkowalski/recdns/internal/packet"
	"github.com/tkowalski/recdns/internal/resolver"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:2053", "UDP address to listen on for incoming DNS queries")
	rootHint := flag.String("root-hint", "", "override the root server IP used to seed recursive lookups")
	metricsAddr := flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	opts := []resolver.Option{resolver.WithLogger(logger)}
	if *rootHint != "" {
		ip := net.ParseIP(*rootHint)
		if ip == nil {
			logger.Error("invalid root hint IP", slog.String("root-hint", *rootHint))
			os.Exit(1)
		}
		opts = append(opts, resolver.WithRootHint(ip))
	}
	res := resolver.New(opts...)

	if *metricsAddr != "" {
		go func() {
			logger.Info("serving metrics", slog.String("addr", *metricsAddr))
			if err := http.ListenAndServe(*metricsAddr, promhttp.Handler()); err != nil {
				logger.Error("metrics server failed", slog.Any("error", err))
			}
		}()
	}

	udpAddr, err := net.ResolveUDPAddr("udp", *addr)
	if err != nil {
		logger.Error("failed to resolve listen address", slog.Any("error", err))
		os.Exit(1)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		logger.Error("failed to listen", slog.Any("error", err))
		os.Exit(1)
	}
	defer conn.Close()

	logger.Info("recursive resolver listening", slog.Any("addr", conn.LocalAddr()))

	raw := make([]byte, buffer.Size)
	for {
		n, clientAddr, err := conn.ReadFromUDP(raw)
		if err != nil {
			logger.Error("failed to read from udp", slog.Any("error", err))
			continue
		}

		var reqArr [buffer.Size]byte
		copy(reqArr[:], raw[:n])
		reqBuf := buffer.FromBytes(reqArr)

		req, err := packet.Decode(reqBuf)
		if err != nil {
			logger.Warn("failed to decode request, dropping", slog.Any("error", err), slog.Any("from", clientAddr))
			continue
		}

		resp := res.HandleQuery(req)

		respBuf := buffer.New()
		if err := resp.Encode(respBuf); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err), slog.Any("from", clientAddr))
			continue
		}

		payload, err := respBuf.GetRange(0, respBuf.Pos())
		if err != nil {
			logger.Error("failed to read encoded response", slog.Any("error", err), slog.Any("from", clientAddr))
			continue
		}

		if _, err := conn.WriteToUDP(payload, clientAddr); err != nil {
			logger.Error("failed to send response", slog.Any("error", err), slog.Any("from", clientAddr))
		}
	}
}
