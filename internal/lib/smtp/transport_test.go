package smtp

import (
	"bufio"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/yamdb/internal/config"
)

// startPlainServer поднимает SMTP-сервер без STARTTLS, отвечающий на минимальный набор команд.
func startPlainServer(t *testing.T) (host, port string) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = lis.Close() })

	go func() {
		for {
			conn, err := lis.Accept()
			if err != nil {
				return
			}
			go serveConn(conn)
		}
	}()

	host, port, err = net.SplitHostPort(lis.Addr().String())
	require.NoError(t, err)
	return host, port
}

func serveConn(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	_, _ = io.WriteString(conn, "220 fake ESMTP\r\n")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(cmd, "EHLO"):
			_, _ = io.WriteString(conn, "250-fake\r\n250 8BITMIME\r\n")
		case strings.HasPrefix(cmd, "QUIT"):
			_, _ = io.WriteString(conn, "221 bye\r\n")
			return
		default:
			_, _ = io.WriteString(conn, "250 OK\r\n")
		}
	}
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestTransport_Connect_RequiresSTARTTLS(t *testing.T) {
	host, port := startPlainServer(t)
	tr := NewTransport(config.SMTP{SMTPHost: host, SMTPPort: port}, newNoopLogger())

	client, err := tr.Connect()
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "STARTTLS")
}

func TestTransport_Connect_AllowPlaintext(t *testing.T) {
	host, port := startPlainServer(t)
	tr := NewTransport(config.SMTP{SMTPHost: host, SMTPPort: port, AllowPlaintext: true}, newNoopLogger())

	client, err := tr.Connect()
	require.NoError(t, err)
	require.NotNil(t, client)

	require.NoError(t, client.Mail("admin@yamdb.com"))
	require.NoError(t, client.Rcpt("reader@example.com"))
	assert.NoError(t, client.Quit())
}

func TestTransport_Connect_DialError(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, port, _ := net.SplitHostPort(lis.Addr().String())
	require.NoError(t, lis.Close())

	tr := NewTransport(config.SMTP{SMTPHost: host, SMTPPort: port}, newNoopLogger())
	_, err = tr.Connect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to dial SMTP server")
}

func TestTransport_GetSMTPUser(t *testing.T) {
	tr := NewTransport(config.SMTP{SMTPUser: "mailer@yamdb.com"}, newNoopLogger())
	assert.Equal(t, "mailer@yamdb.com", tr.GetSMTPUser())
}
