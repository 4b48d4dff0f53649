// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package proxychain

import (
	"fmt"
	"strings"

	"github.com/veil-project/veil/lib/profile"
)

// Options adjusts compilation.
type Options struct {
	// DisableProxyDNS lets DNS lookups bypass the chain. By default
	// they are proxied.
	DisableProxyDNS bool
}

// Timeouts written into every config, in milliseconds.
const (
	TCPReadTimeout    = 15000
	TCPConnectTimeout = 8000
)

// Compile renders proxy as a proxychains-ng config.
func Compile(proxy *profile.ProxyConfig, options Options) string {
	var config strings.Builder

	config.WriteString("# Veil proxy chain\n")
	config.WriteString("strict_chain\n")
	if !options.DisableProxyDNS {
		config.WriteString("proxy_dns\n")
	}
	fmt.Fprintf(&config, "tcp_read_time_out %d\n", TCPReadTimeout)
	fmt.Fprintf(&config, "tcp_connect_time_out %d\n", TCPConnectTimeout)

	config.WriteString("\n[ProxyList]\n")
	primary := fmt.Sprintf("%s %s %d", proxyKind(proxy.ProxyType), proxy.Host, proxy.Port)
	if proxy.Username != "" && proxy.Password != "" {
		primary += " " + proxy.Username + " " + proxy.Password
	}
	config.WriteString(primary + "\n")
	for _, hop := range proxy.Chain {
		fmt.Fprintf(&config, "%s %s %d\n", proxyKind(hop.ProxyType), hop.Host, hop.Port)
	}
	return config.String()
}

// proxyKind maps a proxy type to its proxychains keyword. HTTPS
// proxies are reached with CONNECT, which proxychains calls http.
func proxyKind(proxyType profile.ProxyType) string {
	switch proxyType {
	case profile.ProxySOCKS4:
		return "socks4"
	case profile.ProxySOCKS5:
		return "socks5"
	case profile.ProxyHTTP, profile.ProxyHTTPS:
		return "http"
	default:
		return string(proxyType)
	}
}
