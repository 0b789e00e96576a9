package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"zoo-keeper/internal/domain/backfill"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := rootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["migrate"])
	assert.True(t, names["backfill"])

	require.NotNil(t, root.PersistentFlags().Lookup("dsn"))
	out := root.PersistentFlags().Lookup("output")
	require.NotNil(t, out)
	assert.Equal(t, "o", out.Shorthand)

	bf, _, err := root.Find([]string{"backfill", "rollback"})
	require.NoError(t, err)
	assert.Equal(t, "rollback", bf.Name())
	assert.NotNil(t, bf.RunE)
}

func TestMigrate_RequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")
	root := rootCmd()
	root.SetArgs([]string{"migrate"})
	root.SetOut(&bytes.Buffer{})

	err := root.Execute()
	require.ErrorIs(t, err, errNoDSN)
}

func TestPrintResult(t *testing.T) {
	res := backfill.Result{EnclosuresCreated: 2, Skipped: []string{"Savanna"}}

	outputFmt = "text"
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, res))
	assert.Contains(t, buf.String(), "enclosures created: 2")
	assert.Contains(t, buf.String(), "skipped (already backfilled): Savanna")

	outputFmt = "json"
	t.Cleanup(func() { outputFmt = "text" })
	buf.Reset()
	require.NoError(t, printResult(&buf, res))

	var got backfill.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, res, got)
}
