package hash

import "testing"

func TestStackHashStable(t *testing.T) {
	a := []uint64{0x1000, 0x2000, 0x3000}
	b := []uint64{0x1000, 0x2000, 0x3000}
	if StackHash(a) != StackHash(b) {
		t.Fatal("identical stacks hashed differently")
	}
}

func TestStackHashOrderSensitive(t *testing.T) {
	a := []uint64{0x1000, 0x2000}
	b := []uint64{0x2000, 0x1000}
	if StackHash(a) == StackHash(b) {
		t.Fatal("reordered stack produced the same hash")
	}
}

func TestStackHashEmpty(t *testing.T) {
	if StackHash(nil) != 0 {
		t.Fatal("empty stack should hash to 0")
	}
}

func TestDigestMatchesStackHash(t *testing.T) {
	addrs := []uint64{0xdead, 0xbeef, 0xcafe}
	d := NewDigest()
	for _, a := range addrs {
		d.WriteAddr(a)
	}
	if d.Sum64() != StackHash(addrs) {
		t.Fatal("incremental digest diverged from bulk hash")
	}
}
