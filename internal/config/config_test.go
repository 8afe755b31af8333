package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, DriverMemory, c.Scores.Driver)
	assert.Equal(t, 2*time.Second, c.Autoplay.Step.Duration)
	assert.Nil(t, c.Autoplay.Highlight)
	assert.Equal(t, time.Hour, c.Session.TTL.Duration)
	assert.Equal(t, Board{MinSide: 5, MaxSide: 50}, c.Board)
	assert.False(t, c.Development())
	assert.NotEmpty(t, c.JWT.key, "a random secret is generated")
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `{
		"mode": "development",
		"addr": ":9000",
		"scores": {"driver": "sqlite", "sqlite_path": "/tmp/x.sqlite"},
		"autoplay": {"step": "1s", "highlight": 300000000},
		"session": {"ttl": "10m", "sweep_interval": "30s"},
		"jwt": {"secret": "from-file"}
	}`)
	t.Setenv("APP_PORT", "7000")
	t.Setenv("AUTOPLAY_DEAD", "150ms")
	t.Setenv("SESSION_TTL", "5m")

	c, err := Load(path)
	require.NoError(t, err)
	assert.True(t, c.Development())
	assert.Equal(t, ":7000", c.Addr)
	assert.Equal(t, DriverSQLite, c.Scores.Driver)
	assert.Equal(t, "/tmp/x.sqlite", c.Scores.SQLitePath)
	assert.Equal(t, time.Second, c.Autoplay.Step.Duration)
	assert.Equal(t, 300*time.Millisecond, *c.Autoplay.Highlight.Ptr())
	assert.Equal(t, 150*time.Millisecond, *c.Autoplay.Dead.Ptr())
	assert.Equal(t, 5*time.Minute, c.Session.TTL.Duration)
	assert.Equal(t, []byte("from-file"), c.JWT.key)

	level, err := c.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, "debug", level.String())
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "driver", body: `{"scores": {"driver": "mongo"}}`},
		{name: "duration", body: `{"session": {"ttl": true}}`},
		{name: "bounds", body: `{"board": {"min_side": 10, "max_side": 5}}`},
		{name: "env duration", body: `{}`, env: map[string]string{"AUTOPLAY_STEP": "soon"}},
		{name: "env int", body: `{}`, env: map[string]string{"BOARD_MAX_SIDE": "many"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for k, v := range test.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, test.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestDurationJSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1m30s"`), &d))
	assert.Equal(t, 90*time.Second, d.Duration)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"1m30s"`, string(b))

	var missing *Duration
	assert.Nil(t, missing.Ptr())
}

func TestJWT(t *testing.T) {
	j := NewJWT([]byte("secret"), time.Hour)
	token, err := j.Sign("table-1", time.Now())
	require.NoError(t, err)

	claims, err := j.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "table-1", claims.TableID)

	_, err = NewJWT([]byte("other"), time.Hour).Parse(token)
	assert.Error(t, err)

	expired, err := j.Sign("table-1", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = j.Parse(expired)
	assert.Error(t, err)

	_, err = (&JWT{}).Sign("table-1", time.Now())
	assert.ErrorIs(t, err, ErrNoSigningKey)
}

func TestTableToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/game/x", nil)
	_, ok := TableToken(r)
	assert.False(t, ok)

	r.AddCookie(&http.Cookie{Name: TableCookie, Value: "from-cookie"})
	token, ok := TableToken(r)
	assert.True(t, ok)
	assert.Equal(t, "from-cookie", token)

	r = httptest.NewRequest(http.MethodGet, "/api/game/x/connect?token=from-query", nil)
	token, _ = TableToken(r)
	assert.Equal(t, "from-query", token)

	r.Header.Set("Authorization", "Bearer from-header")
	token, _ = TableToken(r)
	assert.Equal(t, "from-header", token)

	r.Header.Set("Authorization", "Basic abc")
	_, ok = TableToken(r)
	assert.False(t, ok)
}

func TestCookies(t *testing.T) {
	w := httptest.NewRecorder()
	c := Cookies{Domain: "example.com", Secure: true, SameSite: "none"}
	c.SetTableToken(w, "/api/game/1", "tok", time.Now().Add(time.Hour))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, TableCookie, cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.Equal(t, "/api/game/1", cookies[0].Path)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteNoneMode, cookies[0].SameSite)
}
