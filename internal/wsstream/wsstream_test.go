package wsstream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"shepherd/pkg/supervise"
)

var upgrader = websocket.Upgrader{}

// serveProcess exposes one supervised run over a test WebSocket
// endpoint.
func serveProcess(t *testing.T, script string, opts Options) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sup := supervise.New(supervise.Command{Path: "sh", Args: []string{"-c", script}})
		h, err := sup.Start(r.Context())
		if err != nil {
			return
		}
		defer sup.Stop()

		_ = Stream(r.Context(), conn, h, opts)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntilExit collects messages until the final exit message.
func readUntilExit(t *testing.T, conn *websocket.Conn) []Message {
	t.Helper()
	var msgs []Message
	for {
		var m Message
		require.NoError(t, conn.ReadJSON(&m))
		msgs = append(msgs, m)
		if m.Type == "exit" {
			return msgs
		}
	}
}

func TestStreamDeliversOutputAndExit(t *testing.T) {
	conn := serveProcess(t, "echo hi; echo oops 1>&2", Options{})
	msgs := readUntilExit(t, conn)

	require.Len(t, msgs, 3)

	byChannel := map[string]string{}
	for _, m := range msgs[:2] {
		require.Equal(t, "output", m.Type)
		byChannel[m.Channel] = m.Data
	}
	require.Equal(t, "hi", byChannel["stdout"])
	require.Equal(t, "oops", byChannel["stderr"])

	exit := msgs[2]
	require.Equal(t, 0, exit.ExitCode)
	require.Empty(t, exit.Signal)
}

func TestStreamForwardsClientInput(t *testing.T) {
	conn := serveProcess(t, `read x; echo "echoed $x"`, Options{})

	require.NoError(t, conn.WriteJSON(Message{Type: "input", Data: "ping"}))

	msgs := readUntilExit(t, conn)
	require.Len(t, msgs, 2)
	require.Equal(t, "echoed ping", msgs[0].Data)
}

func TestStreamRendersHTML(t *testing.T) {
	conn := serveProcess(t, `echo "# done"`, Options{RenderHTML: true})
	msgs := readUntilExit(t, conn)

	require.Equal(t, "# done", msgs[0].Data)
	require.Contains(t, msgs[0].HTML, "<h1")
}
