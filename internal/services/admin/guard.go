package admin

import (
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"dbconsole/pkg/logging"
)

// RequestHeader marks requests sent by dbconsole's own tooling. A browser
// only sends it cross-origin after a CORS preflight, which the admin
// endpoint never answers.
const RequestHeader = "X-Dbconsole-Request"

var (
	errRemoteClient = errors.New("remote control is disabled for non-loopback clients")
	errNotScripted  = errors.New("request needs a JSON body or the " + RequestHeader + " header")
)

// requestGuard protects the routes that change state or call tools.
type requestGuard struct {
	host        string // host shown in the admin URL
	port        int
	allowRemote bool
}

func (g *requestGuard) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := g.check(r); err != nil {
			logging.Warn(subsystem, "Rejected %s %s from %s: %v", r.Method, r.URL.Path, r.RemoteAddr, err)
			writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *requestGuard) check(r *http.Request) error {
	if !g.allowRemote && !isLoopbackAddr(r.RemoteAddr) {
		return errRemoteClient
	}
	if origin := r.Header.Get("Origin"); origin != "" && !g.sameOrigin(origin) {
		return fmt.Errorf("origin %q is not allowed", origin)
	}
	if r.Header.Get(RequestHeader) == "" && !isJSON(r.Header.Get("Content-Type")) {
		return errNotScripted
	}
	return nil
}

// sameOrigin accepts the admin URL's own origin, under its shown host or any
// loopback name.
func (g *requestGuard) sameOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme != "http" {
		return false
	}
	if u.Port() != strconv.Itoa(g.port) {
		return false
	}
	host := u.Hostname()
	return host == g.host || host == "localhost" || isLoopbackIP(host)
}

func isLoopbackAddr(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	return isLoopbackIP(host)
}

func isLoopbackIP(host string) bool {
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}
