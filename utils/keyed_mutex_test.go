package utils

import (
	"sync"
	"testing"
)

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	km := NewKeyedMutex()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock(7)
			counter++
			km.Unlock(7)
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("counter = %d, want 50", counter)
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()
	km.Lock(1)
	done := make(chan struct{})
	go func() {
		km.Lock(2)
		km.Unlock(2)
		close(done)
	}()
	<-done // a different key must not block
	km.Unlock(1)
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	km := NewKeyedMutex()
	km.Lock(3)
	km.Unlock(3)
	if len(km.locks) != 0 {
		t.Errorf("locks map holds %d entries, want 0", len(km.locks))
	}
}
