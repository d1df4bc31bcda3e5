package sse

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"golang.org/x/net/proxy"
)

// WithProxy routes connections through the proxy at rawURL. socks5, socks5h
// and the "socks" shorthand use a SOCKS dialer; http and https proxies use
// the transport's CONNECT support. An empty rawURL leaves the client as is.
func WithProxy(rawURL string) Option {
	return func(c *Client) {
		if rawURL == "" {
			return
		}
		transport, err := proxyTransport(rawURL)
		if err != nil {
			c.err = fmt.Errorf("sse: proxy %q: %w", rawURL, err)
			return
		}
		c.httpClient = &http.Client{Transport: transport}
	}
}

func proxyTransport(rawURL string) (*http.Transport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "socks" {
		u.Scheme = "socks5"
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	switch u.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
		return transport, nil
	}

	dialer, err := proxy.FromURL(u, &net.Dialer{})
	if err != nil {
		return nil, err
	}
	transport.Proxy = nil
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = cd.DialContext
	} else {
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}
	return transport, nil
}
