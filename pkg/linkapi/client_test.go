package linkapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/ishanjain/crayond/pkg/api"
	"github.com/ishanjain/crayond/pkg/netif"
)

func newTestClient(t *testing.T, reg netif.Registry) *Client {
	t.Helper()

	srv := api.NewServer(api.Config{
		Registry: netif.NewShared(reg),
		Logger:   testr.New(t),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return NewClient(ts.URL + "/")
}

func newMemoryClient(t *testing.T) *Client {
	mem, err := netif.NewMemoryRegistry()
	if err != nil {
		t.Fatalf("NewMemoryRegistry: %v", err)
	}
	return newTestClient(t, mem)
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newMemoryClient(t)

	links, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(links) != 0 {
		t.Errorf("expected no links, got %+v", links)
	}

	created, err := c.Create(ctx, "lo")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	want := netif.Interface{Name: "lo", Addr: "127.0.0.1", Netmask: "255.0.0.0"}
	if *created != want {
		t.Errorf("expected %+v, got %+v", want, created)
	}

	got, err := c.Get(ctx, "lo")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || *got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	links, err = c.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(links) != 1 || links[0] != want {
		t.Errorf("expected [%+v], got %+v", want, links)
	}

	removed, err := c.Delete(ctx, "lo")
	if err != nil || !removed {
		t.Fatalf("Delete: removed=%v err=%v", removed, err)
	}
	removed, err = c.Delete(ctx, "lo")
	if err != nil || removed {
		t.Fatalf("second Delete: removed=%v err=%v", removed, err)
	}

	got, err = c.Get(ctx, "lo")
	if err != nil || got != nil {
		t.Errorf("expected nil after delete, got %+v err=%v", got, err)
	}
}

func TestClientErrors(t *testing.T) {
	ctx := context.Background()
	c := newMemoryClient(t)

	if _, err := c.Create(ctx, "lo"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := c.Create(ctx, "lo")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError || apiErr.Message != "lo: already exists" {
		t.Errorf("unexpected error %+v", apiErr)
	}

	_, err = c.Modify(ctx, netif.Interface{Name: "lo", Addr: "127.0.0.2", Netmask: "255.0.0.0"})
	if !errors.As(err, &apiErr) || !strings.HasPrefix(apiErr.Message, "not implemented") {
		t.Errorf("expected not implemented, got %v", err)
	}
}

func TestClientStatus(t *testing.T) {
	ctx := context.Background()
	c := newMemoryClient(t)

	if _, err := c.List(ctx); err != nil {
		t.Fatalf("List: %v", err)
	}

	doc, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	ops, ok := doc["operations"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing operations in %v", doc)
	}
	if _, ok := ops["all"]; !ok {
		t.Errorf("expected the List call to be counted, got %v", ops)
	}
}
