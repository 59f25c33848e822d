package window

import "testing"

func TestResolveProc(t *testing.T) {
	primary := map[string]uintptr{"glGenBuffers": 0x100}
	fallback := map[string]uintptr{"glGenBuffers": 0x200, "glClear": 0x300}
	calls := 0
	fromPrimary := func(name string) uintptr { calls++; return primary[name] }
	fromFallback := func(name string) uintptr { return fallback[name] }

	tests := []struct {
		name string
		want uintptr
	}{
		{"glGenBuffers", 0x100},
		{"glClear", 0x300},
		{"glDoesNotExist", 0},
	}
	for _, tt := range tests {
		if got := resolveProc(tt.name, fromPrimary, fromFallback); got != tt.want {
			t.Errorf("resolveProc(%q) = %#x, want %#x", tt.name, got, tt.want)
		}
	}
	if calls != len(tests) {
		t.Errorf("primary resolver consulted %d times, want %d", calls, len(tests))
	}
	if got := resolveProc("glClear"); got != 0 {
		t.Errorf("resolveProc with no resolvers = %#x, want 0", got)
	}
}
