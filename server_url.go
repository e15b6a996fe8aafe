package main

import (
	"net"
	"net/url"
	"strings"
)

// listenerURLs returns the HTTP base URL and the websocket URL players dial.
// 1.- Wildcard hosts are advertised as localhost so the log line is clickable.
// 2.- TLS switches both schemes to their secure variants.
func listenerURLs(address string, tlsEnabled bool) (httpURL, wsURL string) {
	httpScheme, wsScheme := "http", "ws"
	if tlsEnabled {
		httpScheme, wsScheme = "https", "wss"
	}
	host := normaliseHostPort(address)
	httpURL = (&url.URL{Scheme: httpScheme, Host: host}).String()
	wsURL = (&url.URL{Scheme: wsScheme, Host: host, Path: "/ws"}).String()
	return httpURL, wsURL
}

func normaliseHostPort(address string) string {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return "localhost"
	}
	host, port, err := net.SplitHostPort(trimmed)
	if err != nil {
		if strings.HasPrefix(trimmed, ":") {
			return "localhost" + trimmed
		}
		return trimmed
	}
	host = strings.TrimSpace(host)
	switch host {
	case "", "0.0.0.0", "::", "[::]":
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
