// Package network provides the HTTP client used for release checks.
package network

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pitchloop/pitchloop/constant"
)

// Client is shared by every outgoing request. Release checks run before the
// player starts, so requests give up quickly.
var Client = &http.Client{
	Timeout:   5 * time.Second,
	Transport: newTransport(),
}

// UserAgent identifies the application to remote APIs.
var UserAgent = fmt.Sprintf("%s/%s", constant.Pitchloop, constant.Version)

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 4
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 5 * time.Second
	return t
}
