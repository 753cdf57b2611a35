package mail

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursemarket/internal/config"
)

// fakeSMTP accepts one session and returns the DATA payload on the channel.
func fakeSMTP(t *testing.T) (host string, port int, data <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	out := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		write := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }

		write("220 localhost ESMTP")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				write("250-localhost")
				write("250 8BITMIME")
			case strings.HasPrefix(cmd, "DATA"):
				write("354 end with .")
				var sb strings.Builder
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					sb.WriteString(l)
				}
				out <- sb.String()
				write("250 queued")
			case strings.HasPrefix(cmd, "QUIT"):
				write("221 bye")
				return
			default:
				write("250 ok")
			}
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port, out
}

func TestMailer_Disabled(t *testing.T) {
	m := New(config.SMTPConfig{})
	assert.False(t, m.Enabled())
	assert.ErrorIs(t, m.Send(context.Background(), Message{To: "u@x.com"}), ErrDisabled)
}

func TestMailer_Send(t *testing.T) {
	host, port, data := fakeSMTP(t)
	m := New(config.SMTPConfig{Host: host, Port: port, From: "no-reply@coursemarket.local"})

	msg, err := Welcome("u@x.com", "Ada", "Lovelace")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Send(ctx, msg))

	select {
	case payload := <-data:
		assert.Contains(t, payload, "To: u@x.com")
		assert.Contains(t, payload, "multipart/alternative")
		assert.Contains(t, payload, "text/html")
		assert.Contains(t, payload, "Ada Lovelace")
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}

func TestMailer_SendUnreachable(t *testing.T) {
	m := New(config.SMTPConfig{Host: "127.0.0.1", Port: 1, From: "a@b.c"})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Error(t, m.Send(ctx, Message{To: "u@x.com", Text: "hi"}))
}

func TestWelcome_EscapesHTML(t *testing.T) {
	msg, err := Welcome("u@x.com", "<b>", "x")
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "&lt;b&gt;")
	assert.Contains(t, msg.Text, "<b>")
	assert.Equal(t, "u@x.com", msg.To)
}

func TestBuildMessage_SkipsEmptyParts(t *testing.T) {
	b, err := buildMessage("a@b.c", Message{To: "u@x.com", Subject: "Hi", Text: "plain only"})
	require.NoError(t, err)
	s := string(b)
	assert.Contains(t, s, "text/plain")
	assert.NotContains(t, s, "text/html")
	assert.Contains(t, s, "Subject: Hi")
}
