package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twitchDeck/internal/domain"
	sqlitestorage "twitchDeck/internal/infrastructure/persistence/sqlite"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAuthorizeURL(t *testing.T) {
	raw := authorizeURL("cid", "http://localhost:3000", "state-1")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "id.twitch.tv", u.Host)

	q := u.Query()
	assert.Equal(t, "token", q.Get("response_type"))
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "http://localhost:3000", q.Get("redirect_uri"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, strings.Join(domain.RequiredScopes, " "), q.Get("scope"))
}

func TestScopesCommand(t *testing.T) {
	out, err := execute(t, "scopes")
	require.NoError(t, err)
	assert.Equal(t, strings.Join(domain.RequiredScopes, " ")+"\n", out)
}

func TestValidateCommand_Invalid(t *testing.T) {
	out, err := execute(t, "validate", "--channel", "ab", "--token", "x", "--broadcaster-id", "123abc")
	require.Error(t, err)
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "error   "+domain.KeyTwitchChannel)
	assert.Contains(t, out, "error   "+domain.KeyTwitchBroadcasterID)
	assert.NotContains(t, out, "ok\n")
}

func TestValidateCommand_JSON(t *testing.T) {
	out, err := execute(t, "validate", "--json", "--channel", "@Ninja", "--token", "short", "--broadcaster-id", "19571641")
	require.NoError(t, err)

	var got validateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Valid)
	assert.Empty(t, got.Errors)
	assert.NotEmpty(t, got.Warnings)
	assert.Nil(t, got.TokenValid)
}

func TestParseSets(t *testing.T) {
	got, err := parseSets([]string{"slowDelay=5", "twitchChannel=a=b"})
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"slowDelay", "5"}, {"twitchChannel", "a=b"}}, got)

	_, err = parseSets([]string{"novalue"})
	assert.Error(t, err)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "******wxyz", maskToken("oauth:abcdefwxyz"))
	assert.Equal(t, "***", maskToken("abc"))
	assert.Equal(t, "", maskToken(""))
}

func TestHistoryCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "plugin.db")
	store, err := sqlitestorage.NewStore(dbPath)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.SaveAction(ctx, &domain.ActionRecord{
		Action:    domain.ActionSlow,
		Context:   "key-1",
		Result:    domain.ResultOK,
		Detail:    "slow mode on (3s)",
		CreatedAt: time.Now(),
	}))
	_, err = store.SaveRaid(ctx, domain.Raider{Login: "coolraider", DisplayName: "CoolRaider", Viewers: 42, ReceivedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	out, err := execute(t, "history", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "ACTION")
	assert.Contains(t, out, "slow mode on (3s)")

	out, err = execute(t, "history", "--db", dbPath, "--raids")
	require.NoError(t, err)
	assert.Contains(t, out, "CoolRaider")
	assert.Contains(t, out, "42")
}

// fakeHost answers the inspector the way the host and the plugin would.
func fakeHost(t *testing.T) int {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		global := map[string]string{
			domain.KeyTwitchChannel:       "streamer",
			domain.KeyTwitchToken:         "oauth:abcdefghijklmnopqrstuvwxyz",
			domain.KeyTwitchBroadcasterID: "100",
			domain.KeyTwitchClientID:      "cid",
		}

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var frame struct {
				Event   string          `json:"event"`
				Action  string          `json:"action"`
				Context string          `json:"context"`
				Payload json.RawMessage `json:"payload"`
			}
			if json.Unmarshal(data, &frame) != nil {
				continue
			}

			switch frame.Event {
			case "getGlobalSettings":
				_ = conn.WriteJSON(map[string]any{
					"event":   "didReceiveGlobalSettings",
					"payload": map[string]any{"settings": global},
				})
			case "sendToPlugin":
				var req domain.PluginRequest
				_ = json.Unmarshal(frame.Payload, &req)
				if req.Action != domain.RelayConnectionTest {
					continue
				}
				_ = conn.WriteJSON(map[string]any{
					"event":   "sendToPropertyInspector",
					"action":  frame.Action,
					"context": frame.Context,
					"payload": domain.InspectorMessage{
						Event:     domain.RelayConnectionTest,
						RequestID: req.RequestID,
						Success:   true,
						Login:     "streamer",
					},
				})
			}
		}
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return port
}

func TestInspectCommand_ConnectionTest(t *testing.T) {
	port := fakeHost(t)

	out, err := execute(t, "inspect",
		"--port", strconv.Itoa(port),
		"--uuid", "pi-1",
		"--action-info", `{"action":"com.twitchdeck.moderation.shield","context":"key-1"}`,
		"--set", "slowDelay=5",
		"--test",
		"--timeout", "5s")
	require.NoError(t, err)

	assert.Contains(t, out, "channel         streamer")
	assert.Contains(t, out, "slow delay      5")
	assert.Contains(t, out, "status          Connected as streamer")
	assert.NotContains(t, out, "abcdefghijklmnopqrstuvwxyz")
}
