package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := fromLookup(lookupFrom(nil))
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr())
	require.Equal(t, DefaultPersistTimeout, cfg.PersistTimeout)
	require.False(t, cfg.OdinConfigured())
	require.False(t, cfg.PlansConfigured())
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := fromLookup(lookupFrom(map[string]string{
		"PORT":                   " 9090 ",
		"DB_DSN":                 "postgres://zoo@localhost/zoo",
		"PERSIST_TIMEOUT":        "750ms",
		"ODIN_BASE_URL":          "https://odin.local",
		"ODIN_API_KEY":           "k",
		"ALLOW_ALL_CAPABILITIES": "TRUE",
	}))
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Addr())
	require.Equal(t, "postgres://zoo@localhost/zoo", cfg.DBDSN)
	require.Equal(t, 750*time.Millisecond, cfg.PersistTimeout)
	require.True(t, cfg.OdinConfigured())
	require.True(t, cfg.AllowAllCapabilities)
}

func TestFromLookup_Invalid(t *testing.T) {
	_, err := fromLookup(lookupFrom(map[string]string{"PORT": "http"}))
	require.Error(t, err)

	_, err = fromLookup(lookupFrom(map[string]string{"PERSIST_TIMEOUT": "soon"}))
	require.Error(t, err)

	_, err = fromLookup(lookupFrom(map[string]string{"PERSIST_TIMEOUT": "-1s"}))
	require.Error(t, err)
}
