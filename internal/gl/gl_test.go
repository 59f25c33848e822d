package gl

import (
	"runtime"
	"strings"
	"testing"
	"unsafe"
)

func TestResolveProcs(t *testing.T) {
	symbols := map[string]uintptr{
		"glClearColor": 0x10,
		"glClear":      0x20,
		"glViewport":   0x30,
		"glGetString":  0x40,
	}
	p, err := resolveProcs(func(name string) uintptr { return symbols[name] })
	if err != nil {
		t.Fatalf("resolveProcs: %v", err)
	}
	want := procs{clearColor: 0x10, clear: 0x20, viewport: 0x30, getString: 0x40}
	if p != want {
		t.Fatalf("procs = %+v, want %+v", p, want)
	}
}

func TestLoadMissingSymbols(t *testing.T) {
	symbols := map[string]uintptr{"glClear": 0x20, "glViewport": 0x30}
	gl, err := Load(func(name string) uintptr { return symbols[name] })
	if err == nil {
		t.Fatalf("Load succeeded with missing symbols: %#v", gl)
	}
	for _, name := range []string{"glClearColor", "glGetString"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name %s", err, name)
		}
	}
	if strings.Contains(err.Error(), "glViewport") {
		t.Errorf("error %q names a resolved symbol", err)
	}
}

func TestGostring(t *testing.T) {
	b := []byte("4.6.0 NVIDIA\x00trailing")
	if got := gostring(&b[0]); got != "4.6.0 NVIDIA" {
		t.Fatalf("gostring = %q", got)
	}
	if got := gostring(nil); got != "" {
		t.Fatalf("gostring(nil) = %q", got)
	}
}

func TestBytePtr(t *testing.T) {
	b := []byte("Mesa\x00")
	addr := uintptr(unsafe.Pointer(&b[0]))
	if got := gostring(bytePtr(addr)); got != "Mesa" {
		t.Fatalf("gostring(bytePtr) = %q, want Mesa", got)
	}
	runtime.KeepAlive(b)
	if bytePtr(0) != nil {
		t.Fatal("bytePtr(0) is not nil")
	}
}
