package lifecycle

import (
	"strings"
	"testing"
)

type store struct{ name string }

func TestEffectRunsOncePerDeps(t *testing.T) {
	t.Parallel()

	mount := NewMount()
	first := &store{name: "a"}
	runs := 0
	effect := func() func() {
		runs++
		return nil
	}

	if !mount.Effect("load", first, effect) {
		t.Fatal("first registration did not run")
	}
	for i := 0; i < 3; i++ {
		if mount.Effect("load", first, effect) {
			t.Fatal("effect re-ran with unchanged deps")
		}
	}
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}

	if !mount.Effect("load", &store{name: "a"}, effect) {
		t.Fatal("effect did not re-run for a new identity")
	}
	if runs != 2 {
		t.Fatalf("runs = %d, want 2", runs)
	}
}

func TestEffectRunsPreviousCleanupOnDepsChange(t *testing.T) {
	t.Parallel()

	mount := NewMount()
	var log []string
	register := func(tag string) func() func() {
		return func() func() {
			log = append(log, "run "+tag)
			return func() { log = append(log, "cleanup "+tag) }
		}
	}
	mount.Effect("sub", 1, register("one"))
	mount.Effect("sub", 2, register("two"))
	mount.Unmount()

	want := "run one,cleanup one,run two,cleanup two"
	if got := strings.Join(log, ","); got != want {
		t.Fatalf("log = %q, want %q", got, want)
	}
}

func TestUnmountRunsCleanupsNewestFirstOnce(t *testing.T) {
	t.Parallel()

	mount := NewMount()
	var log []string
	mount.Effect("a", "x", func() func() { return func() { log = append(log, "a") } })
	mount.OnUnmount(func() { log = append(log, "hook") })
	mount.Effect("b", "x", func() func() { return func() { log = append(log, "b") } })

	mount.Unmount()
	mount.Unmount()

	if got := strings.Join(log, ","); got != "hook,b,a" {
		t.Fatalf("log = %q", got)
	}
	if !mount.Unmounted() {
		t.Fatal("Unmounted() = false")
	}
}

func TestEffectAfterUnmountIsIgnored(t *testing.T) {
	t.Parallel()

	mount := NewMount()
	mount.Unmount()
	if mount.Effect("load", 1, func() func() { t.Fatal("effect ran after unmount"); return nil }) {
		t.Fatal("Effect() = true after unmount")
	}
	ran := false
	mount.OnUnmount(func() { ran = true })
	if !ran {
		t.Fatal("late OnUnmount callback did not run immediately")
	}
}

func TestIncomparableDepsAlwaysRerun(t *testing.T) {
	t.Parallel()

	mount := NewMount()
	runs := 0
	deps := []int{1}
	for i := 0; i < 2; i++ {
		mount.Effect("slice", deps, func() func() { runs++; return nil })
	}
	if runs != 2 {
		t.Fatalf("runs = %d, want 2", runs)
	}
}

func TestNilMountIsSafe(t *testing.T) {
	t.Parallel()

	var mount *Mount
	if mount.Effect("x", 1, func() func() { return nil }) {
		t.Fatal("nil mount ran effect")
	}
	mount.OnUnmount(func() {})
	mount.Unmount()
	if !mount.Unmounted() {
		t.Fatal("nil mount should report unmounted")
	}
}
