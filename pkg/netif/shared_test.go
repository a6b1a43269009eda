package netif

import (
	"fmt"
	"sync"
	"testing"
)

func TestSharedConcurrentCreate(t *testing.T) {
	shared := NewShared(newMemory(t))

	const n = 64
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := shared.Create(fmt.Sprintf("veth%d", i)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Create: %v", err)
	}

	all, err := shared.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != n {
		t.Fatalf("expected %d interfaces, got %d", n, len(all))
	}
	seen := make(map[string]int)
	for _, iface := range all {
		seen[iface.Name]++
	}
	for i := 0; i < n; i++ {
		if name := fmt.Sprintf("veth%d", i); seen[name] != 1 {
			t.Errorf("%s seen %d times", name, seen[name])
		}
	}
}

func TestSharedConcurrentDuplicate(t *testing.T) {
	shared := NewShared(newMemory(t))

	const n = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := shared.Create("lo"); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("expected exactly one successful create, got %d", succeeded)
	}
}

func TestSharedDo(t *testing.T) {
	shared := NewShared(newMemory(t))

	shared.Do(func(reg Registry) {
		if _, err := reg.Create("lo"); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if ok, err := reg.Delete("lo"); err != nil || !ok {
			t.Fatalf("Delete: ok=%v err=%v", ok, err)
		}
	})

	got, err := shared.Get("lo")
	if err != nil || got != nil {
		t.Errorf("expected lo to be gone, got %+v err=%v", got, err)
	}
}

func TestSharedReleasesOnPanic(t *testing.T) {
	shared := NewShared(newMemory(t))

	func() {
		defer func() { recover() }()
		shared.Do(func(Registry) { panic("boom") })
	}()

	if _, err := shared.Create("lo"); err != nil {
		t.Fatalf("Create after panic: %v", err)
	}
}
