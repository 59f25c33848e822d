package window

import "fmt"

// xErrorEvent mirrors the LP64 XErrorEvent.
type xErrorEvent struct {
	Type        int32
	Display     uintptr
	ResourceID  uint64
	Serial      uint64
	ErrorCode   uint8
	RequestCode uint8
	MinorCode   uint8
}

// XError is a protocol error reported by the X server while a request made
// by this package was being processed.
type XError struct {
	Code     uint8
	Request  uint8
	Minor    uint8
	Resource uint64
}

// Core protocol error names (X11/X.h). Extension errors (GLXBadFBConfig and
// friends) have server-assigned codes and print as numbers.
var xErrorNames = map[uint8]string{
	1:  "BadRequest",
	2:  "BadValue",
	3:  "BadWindow",
	4:  "BadPixmap",
	5:  "BadAtom",
	6:  "BadCursor",
	7:  "BadFont",
	8:  "BadMatch",
	9:  "BadDrawable",
	10: "BadAccess",
	11: "BadAlloc",
	12: "BadColor",
	13: "BadGC",
	14: "BadIDChoice",
	15: "BadName",
	16: "BadLength",
	17: "BadImplementation",
}

func (e *XError) Error() string {
	name, ok := xErrorNames[e.Code]
	if !ok {
		name = fmt.Sprintf("error %d", e.Code)
	}
	return fmt.Sprintf("X %s (request %d.%d, resource %#x)", name, e.Request, e.Minor, e.Resource)
}

// xErrorTrap keeps the first error reported while armed.
type xErrorTrap struct {
	first *XError
}

func (t *xErrorTrap) record(ev *xErrorEvent) {
	if t.first != nil || ev == nil {
		return
	}
	t.first = &XError{
		Code:     ev.ErrorCode,
		Request:  ev.RequestCode,
		Minor:    ev.MinorCode,
		Resource: ev.ResourceID,
	}
}

// take returns the recorded error, if any, and disarms the trap.
func (t *xErrorTrap) take() error {
	err := t.first
	t.first = nil
	if err == nil {
		return nil
	}
	return err
}
