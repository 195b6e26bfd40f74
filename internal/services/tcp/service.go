package tcp

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"dbconsole/internal/config"
	"dbconsole/internal/services"
	"dbconsole/pkg/logging"
)

// idleTimeout closes connections that send nothing for this long.
const idleTimeout = 5 * time.Minute

// Service is the raw TCP listener. It speaks a line protocol:
//
//	PING     -> PONG
//	VERSION  -> the launcher version
//	STATUS   -> one line per service, then END
//	QUIT     -> BYE, connection closed
type Service struct {
	*services.ListenerService

	version string
	sup     services.Supervisor
}

// New is a services.Factory for the raw TCP listener.
func New(args config.Args, sup services.Supervisor) (services.Service, error) {
	if args.TCPPort < 0 || args.TCPPort > 65535 {
		return nil, fmt.Errorf("invalid tcp port %d", args.TCPPort)
	}
	s := &Service{version: args.Version, sup: sup}
	s.ListenerService = services.NewListenerService(services.KindTCP, "TCP server", "tcp", args, args.TCPPort, s.serveConn)
	return s, nil
}

func (s *Service) serveConn(ctx context.Context, conn net.Conn) {
	logging.Debug("TCP", "connection from %s", conn.RemoteAddr())

	scanner := bufio.NewScanner(conn)
	w := bufio.NewWriter(conn)
	for {
		conn.SetReadDeadline(time.Now().Add(idleTimeout))
		if !scanner.Scan() {
			return
		}
		quit := s.handleLine(w, strings.TrimSpace(scanner.Text()))
		if err := w.Flush(); err != nil || quit || ctx.Err() != nil {
			return
		}
	}
}

// handleLine writes the response for one command and reports whether the
// connection should be closed.
func (s *Service) handleLine(w *bufio.Writer, line string) bool {
	cmd := strings.ToUpper(line)
	switch cmd {
	case "":
		return false
	case "PING":
		fmt.Fprintln(w, "PONG")
	case "VERSION":
		fmt.Fprintln(w, s.version)
	case "STATUS":
		if s.sup != nil {
			for _, st := range s.sup.Status() {
				fmt.Fprintf(w, "%s %s %s\n", st.Kind, runningWord(st), st.Status)
			}
		}
		fmt.Fprintln(w, "END")
	case "QUIT":
		fmt.Fprintln(w, "BYE")
		return true
	default:
		fmt.Fprintf(w, "ERR unknown command %q\n", line)
	}
	return false
}

func runningWord(st services.SlotStatus) string {
	switch {
	case !st.Present:
		return "absent"
	case st.Running:
		return "running"
	default:
		return "stopped"
	}
}
