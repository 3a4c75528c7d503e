package idgen

import (
	"strings"
	"testing"
)

func TestCounter(t *testing.T) {
	c := NewCounter()

	got := []string{c.Next("bus"), c.Next("bus"), c.Next("curve"), c.Next("bus")}
	want := []string{"bus-1", "bus-2", "curve-1", "bus-3"}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("id %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestUUID(t *testing.T) {
	src := NewUUID()

	a := src.Next("plugin")
	b := src.Next("plugin")

	if a == b {
		t.Fatalf("UUID source repeated %q", a)
	}

	if !strings.HasPrefix(a, "plugin-") || len(a) != len("plugin-")+36 {
		t.Fatalf("unexpected id %q", a)
	}

	if len(src.Next("")) != 36 {
		t.Fatal("empty prefix should yield a bare uuid")
	}
}

func TestFunc(t *testing.T) {
	var src Source = Func(func(prefix string) string { return prefix + "-fixed" })

	if got := src.Next("chain"); got != "chain-fixed" {
		t.Fatalf("Next = %q", got)
	}
}
