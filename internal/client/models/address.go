package models

import (
	"fmt"
	"regexp"
	"strconv"
)

// DefaultPort is assumed when a server address carries no port.
const DefaultPort = 80

var serverAddressRe = regexp.MustCompile(`^(?:https?://)?(?:www\.)?([-\w.]+)(?::(\d+))?$`)

// ParseServerAddress splits "[http(s)://][www.]host[:port]" into host and
// port.
func ParseServerAddress(addr string) (host string, port int, err error) {
	m := serverAddressRe.FindStringSubmatch(addr)
	if m == nil {
		return "", 0, fmt.Errorf("invalid server address %q", addr)
	}
	if m[2] == "" {
		return m[1], DefaultPort, nil
	}
	port, err = strconv.Atoi(m[2])
	if err != nil || port > 65535 {
		return "", 0, fmt.Errorf("invalid port in server address %q", addr)
	}
	return m[1], port, nil
}
