package netif

import (
	"errors"
	"testing"

	"github.com/go-logr/logr/testr"
)

func newMemory(t *testing.T, opts ...MemoryOption) *MemoryRegistry {
	t.Helper()

	m, err := NewMemoryRegistry(append([]MemoryOption{WithLogger(testr.New(t))}, opts...)...)
	if err != nil {
		t.Fatalf("NewMemoryRegistry: %v", err)
	}
	return m
}

func TestMemoryEmpty(t *testing.T) {
	m := newMemory(t)

	all, err := m.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if all == nil || len(all) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", all)
	}
}

func TestMemoryCreateGet(t *testing.T) {
	for _, name := range []string{"lo", "eth0", "wg-mesh", "br.100"} {
		t.Run(name, func(t *testing.T) {
			m := newMemory(t)

			created, err := m.Create(name)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			want := Interface{Name: name, Addr: "127.0.0.1", Netmask: "255.0.0.0"}
			if created != want {
				t.Errorf("expected %+v, got %+v", want, created)
			}

			got, err := m.Get(name)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got == nil || *got != created {
				t.Errorf("expected %+v, got %+v", created, got)
			}

			all, err := m.All()
			if err != nil {
				t.Fatalf("All: %v", err)
			}
			if len(all) != 1 || all[0] != created {
				t.Errorf("expected [%+v], got %+v", created, all)
			}
		})
	}
}

func TestMemoryGetMissing(t *testing.T) {
	m := newMemory(t)

	got, err := m.Get("lo")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestMemoryNoDuplicates(t *testing.T) {
	m := newMemory(t)

	if _, err := m.Create("lo"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := m.Create("lo")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err.Error() != "lo: already exists" {
		t.Errorf("unexpected message %q", err.Error())
	}

	all, err := m.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 interface after failed create, got %d", len(all))
	}
}

func TestMemoryDelete(t *testing.T) {
	m := newMemory(t)

	if ok, err := m.Delete("lo"); err != nil || ok {
		t.Fatalf("Delete on empty registry: ok=%v err=%v", ok, err)
	}

	if _, err := m.Create("lo"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ok, err := m.Delete("lo"); err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}
	if ok, err := m.Delete("lo"); err != nil || ok {
		t.Fatalf("second Delete: ok=%v err=%v", ok, err)
	}

	got, err := m.Get("lo")
	if err != nil || got != nil {
		t.Errorf("expected lo to be gone, got %+v err=%v", got, err)
	}
}

func TestMemoryModifyUnimplemented(t *testing.T) {
	m := newMemory(t)

	created, err := m.Create("lo")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	created.Addr = "10.0.0.1"
	ok, err := m.Modify(created)
	if !errors.Is(err, ErrUnimplemented) {
		t.Fatalf("expected ErrUnimplemented, got %v", err)
	}
	if ok {
		t.Error("Modify reported success")
	}

	got, _ := m.Get("lo")
	if got.Addr != "127.0.0.1" {
		t.Errorf("Modify changed state: %+v", got)
	}
}

func TestMemoryWithSubnet(t *testing.T) {
	m := newMemory(t, WithSubnet("10.107.0.0/24"))

	eth0, err := m.Create("eth0")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if eth0.Addr != "10.107.0.1" || eth0.Netmask != "255.255.255.0" {
		t.Errorf("unexpected address for eth0: %+v", eth0)
	}

	eth1, err := m.Create("eth1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if eth1.Addr != "10.107.0.2" {
		t.Errorf("unexpected address for eth1: %+v", eth1)
	}

	if _, err := m.Delete("eth0"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := m.Create("eth0"); err != nil {
		t.Fatalf("Create after delete: %v", err)
	}
}

func TestMemoryWithSubnetInvalid(t *testing.T) {
	for _, subnet := range []string{"bogus", "fd00::/64"} {
		if _, err := NewMemoryRegistry(WithSubnet(subnet)); err == nil {
			t.Errorf("expected error for subnet %q", subnet)
		}
	}
}
