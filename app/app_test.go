package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/proposalpdf/config"
	"github.com/lvillar/proposalpdf/printer"
	"github.com/lvillar/proposalpdf/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Database.DSN = filepath.Join(t.TempDir(), "app.db")
	cfg.Assets.AppRoot = t.TempDir()
	cfg.Assets.UploadsDir = t.TempDir()
	return cfg
}

func TestNewPrintsFromStore(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	a, err := New(ctx, testConfig(t), &logs)
	require.NoError(t, err)
	defer a.Close()

	p := &store.Proposal{Name: "Acme Redesign", ClientName: "Acme"}
	require.NoError(t, a.Store.CreateProposal(ctx, p))
	_, err = a.Store.AddItem(ctx, p.ID, store.ItemInput{Name: "Design", UnitPrice: 1000, Quantity: 2})
	require.NoError(t, err)

	cmd, err := printer.NewCommand(printer.ActionPrintProposal, p.ID)
	require.NoError(t, err)
	out, err := a.Printer.Print(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, "Acme-Redesign.pdf", out.Filename)
	assert.True(t, bytes.HasPrefix(out.PDF, []byte("%PDF")))
	assert.Contains(t, logs.String(), "document rendered")
}

func TestNewRedisFallback(t *testing.T) {
	cfg := testConfig(t)
	cfg.Redis.Addr = "127.0.0.1:1"
	var logs bytes.Buffer

	a, err := New(context.Background(), cfg, &logs)
	require.NoError(t, err)
	defer a.Close()
	assert.Contains(t, logs.String(), "render cache disabled")
}

func TestNewErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Log.Level = "loud"
	_, err := New(context.Background(), cfg, &bytes.Buffer{})
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Schemas.Dir = filepath.Join(t.TempDir(), "missing")
	_, err = New(context.Background(), cfg, &bytes.Buffer{})
	assert.Error(t, err)
}
