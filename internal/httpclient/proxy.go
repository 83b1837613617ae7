// Package httpclient builds HTTP clients that optionally route through a proxy.
package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	_ "github.com/bdandy/go-socks4"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/proxy"
)

const dialTimeout = 10 * time.Second

// New returns a client with the given timeout. proxyStr may be empty or an
// http(s)://, socks5:// or socks4:// URL; an unusable proxy falls back to a
// direct connection.
func New(proxyStr string, timeout time.Duration) *http.Client {
	client := &http.Client{Timeout: timeout}
	if proxyStr == "" {
		return client
	}

	transport, err := proxyTransport(proxyStr)
	if err != nil {
		log.Warn().Err(err).Msg("[HTTP] Proxy disabled, using direct connection")
		return client
	}

	log.Info().Str("proxy", redact(proxyStr)).Msg("[HTTP] Using proxy")
	client.Transport = transport
	return client
}

func proxyTransport(proxyStr string) (*http.Transport, error) {
	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy format: %w", err)
	}

	switch proxyURL.Scheme {
	case "http", "https":
		return &http.Transport{Proxy: http.ProxyURL(proxyURL)}, nil

	case "socks5":
		auth := &proxy.Auth{}
		if proxyURL.User != nil {
			auth.User = proxyURL.User.Username()
			if pass, ok := proxyURL.User.Password(); ok {
				auth.Password = pass
			}
		}
		dialer, err := proxy.SOCKS5("tcp", proxyURL.Host, auth, &net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: dialTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("socks5 dialer: %w", err)
		}
		return dialerTransport(dialer), nil

	case "socks4":
		// socks4 is registered with x/net/proxy by the go-socks4 import
		dialer, err := proxy.FromURL(proxyURL, &net.Dialer{Timeout: dialTimeout})
		if err != nil {
			return nil, fmt.Errorf("socks4 dialer: %w", err)
		}
		return dialerTransport(dialer), nil

	default:
		return nil, fmt.Errorf("unsupported proxy scheme: %s", proxyURL.Scheme)
	}
}

func dialerTransport(dialer proxy.Dialer) *http.Transport {
	return &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		},
	}
}

func redact(proxyStr string) string {
	u, err := url.Parse(proxyStr)
	if err != nil || u.User == nil {
		return proxyStr
	}
	u.User = url.User(u.User.Username())
	return u.String()
}
