package window

import (
	"errors"
	"strings"
	"testing"
)

func TestXErrorTrapKeepsFirst(t *testing.T) {
	var trap xErrorTrap
	if err := trap.take(); err != nil {
		t.Fatalf("idle trap returned %v", err)
	}

	trap.record(&xErrorEvent{ErrorCode: 8, RequestCode: 152, MinorCode: 34, ResourceID: 0x4a00002})
	trap.record(&xErrorEvent{ErrorCode: 2, RequestCode: 152, MinorCode: 5})
	trap.record(nil)

	err := trap.take()
	var xerr *XError
	if !errors.As(err, &xerr) {
		t.Fatalf("take() = %v, want *XError", err)
	}
	want := XError{Code: 8, Request: 152, Minor: 34, Resource: 0x4a00002}
	if *xerr != want {
		t.Fatalf("recorded %+v, want %+v", *xerr, want)
	}
	if err := trap.take(); err != nil {
		t.Fatalf("second take() = %v, want nil", err)
	}
}

func TestXErrorString(t *testing.T) {
	tests := []struct {
		err  XError
		want string
	}{
		{XError{Code: 8, Request: 152, Minor: 34}, "X BadMatch (request 152.34"},
		{XError{Code: 11, Request: 152, Minor: 3}, "X BadAlloc (request 152.3"},
		{XError{Code: 170, Request: 152, Minor: 34}, "X error 170 (request 152.34"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); !strings.HasPrefix(got, tt.want) {
			t.Errorf("Error() = %q, want prefix %q", got, tt.want)
		}
	}
}
