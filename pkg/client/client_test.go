package client

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/charlie0129/cellentry/pkg/cell"
	"github.com/charlie0129/cellentry/pkg/config"
	"github.com/charlie0129/cellentry/pkg/daemon"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	conf := config.NewFileFromConfig(nil, filepath.Join(t.TempDir(), "cellentry.json"))
	ts := httptest.NewServer(daemon.NewServer(conf).Handler())
	t.Cleanup(ts.Close)

	addr := ts.Listener.Addr().String()
	return NewClientWithHTTP(&http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "tcp", addr)
			},
		},
	})
}

func TestClientWorkflow(t *testing.T) {
	c := newTestClient(t)

	cells, err := c.Register("bench", []string{"lfp", "nmc"}, 2)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	var keys []string
	for _, sp := range cells {
		keys = append(keys, sp.Key)
	}
	if diff := cmp.Diff([]string{"cell_1_lfp", "cell_2_nmc"}, keys); diff != "" {
		t.Fatalf("unexpected keys (-want +got):\n%s", diff)
	}

	sp, err := c.SetCurrent("bench", "cell_1_lfp", 2.0)
	if err != nil {
		t.Fatalf("SetCurrent returned error: %v", err)
	}
	if sp.Capacity != 6.4 {
		t.Fatalf("expected capacity 6.4, got %v", sp.Capacity)
	}

	got, err := c.GetCells("bench")
	if err != nil {
		t.Fatalf("GetCells returned error: %v", err)
	}
	if diff := cmp.Diff(sp, got[0]); diff != "" {
		t.Fatalf("GetCells disagrees with SetCurrent (-want +got):\n%s", diff)
	}

	sum, err := c.GetSummary("bench")
	if err != nil {
		t.Fatalf("GetSummary returned error: %v", err)
	}
	if sum.Cells != 2 || sum.TotalCapacity != 6.4 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	csv, err := c.Export("bench")
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if !strings.HasPrefix(string(csv), ",voltage,current,temp,capacity,min_voltage,max_voltage\n") {
		t.Fatalf("unexpected csv header: %q", csv)
	}

	if err := c.ResetSession("bench"); err != nil {
		t.Fatalf("ResetSession returned error: %v", err)
	}
	info, err := c.GetSession("bench")
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if info.Phase != "awaiting-registration" || len(info.Cells) != 0 {
		t.Fatalf("expected empty session after reset, got %+v", info)
	}
}

func TestClientRejectsBeforeSending(t *testing.T) {
	// A client with no reachable daemon: validation must fail first.
	c := NewClient(filepath.Join(t.TempDir(), "missing.sock"))

	if _, err := c.Register("x", []string{"lfp"}, 21); !errors.Is(err, cell.ErrInvalidCount) {
		t.Fatalf("expected ErrInvalidCount, got %v", err)
	}
	if _, err := c.SetCurrent("x", "cell_1_lfp", -0.1); !errors.Is(err, cell.ErrInvalidCurrent) {
		t.Fatalf("expected ErrInvalidCurrent, got %v", err)
	}
	if _, err := c.GetVersion(); !errors.Is(err, ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}

func TestClientNotFound(t *testing.T) {
	c := newTestClient(t)

	if _, err := c.GetSession("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := c.Register("s", []string{"lfp"}, 1); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, err := c.SetCurrent("s", "cell_2_lfp", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClientVersionAndConfig(t *testing.T) {
	c := newTestClient(t)

	v, err := c.GetVersion()
	if err != nil || v == "" {
		t.Fatalf("GetVersion = %q, %v", v, err)
	}

	if _, err := c.SetDefaultCellCount(5); err != nil {
		t.Fatalf("SetDefaultCellCount returned error: %v", err)
	}
	conf, err := c.GetConfig()
	if err != nil {
		t.Fatalf("GetConfig returned error: %v", err)
	}
	if conf.DefaultCellCount == nil || *conf.DefaultCellCount != 5 {
		t.Fatalf("expected default cell count 5, got %v", conf.DefaultCellCount)
	}
}

func TestClientCreateAndDeleteSession(t *testing.T) {
	c := newTestClient(t)

	info, err := c.CreateSession()
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}
	if info.ID == "" || info.Phase != "awaiting-registration" {
		t.Fatalf("unexpected new session: %+v", info)
	}

	ids, err := c.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions returned error: %v", err)
	}
	if diff := cmp.Diff([]string{info.ID}, ids); diff != "" {
		t.Fatalf("unexpected sessions (-want +got):\n%s", diff)
	}

	if err := c.DeleteSession(info.ID); err != nil {
		t.Fatalf("DeleteSession returned error: %v", err)
	}
	if _, err := c.GetSession(info.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := c.DeleteSession(info.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for second delete, got %v", err)
	}
}
