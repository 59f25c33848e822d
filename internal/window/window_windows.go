//go:build windows

package window

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	csOwnDC   = 0x0020
	csHRedraw = 0x0002
	csVRedraw = 0x0001

	wsOverlappedWindow = 0x00CF0000
	wsClipSiblings     = 0x04000000
	wsClipChildren     = 0x02000000
	swShow             = 5

	pmRemove = 0x0001

	pfdTypeRGBA      = 0
	pfdMainPlane     = 0
	pfdDrawToWindow  = 0x00000004
	pfdSupportOpenGL = 0x00000020
	pfdDoubleBuffer  = 0x00000001

	cwUseDefault = 0x80000000

	errorClassAlreadyExists = 1410

	// WGL_ARB_create_context / WGL_ARB_create_context_profile.
	wglContextMajorVersionArb         = 0x2091
	wglContextMinorVersionArb         = 0x2092
	wglContextFlagsArb                = 0x2094
	wglContextProfileMaskArb          = 0x9126
	wglContextCoreProfileBitArb       = 0x00000001
	wglContextForwardCompatibleBitArb = 0x00000002

	swpNoSize         = 0x0001
	swpNoMove         = 0x0002
	swpNoZOrder       = 0x0004
	swpFrameChanged   = 0x0020
	swpNoOwnerZOrder  = 0x0200
	monitorToPrimary  = 0x00000001
	hwndTop           = 0
	gwlStyle          = ^uintptr(15) // GWL_STYLE (-16)
	requiredPFDFlags  = pfdDrawToWindow | pfdSupportOpenGL | pfdDoubleBuffer
	minColorBits      = 24
	minDepthBits      = 24
	minStencilBits    = 8
	pixelFormatDescSz = 40
)

type (
	hwnd  = windows.Handle
	hdc   = windows.Handle
	hglrc = windows.Handle
)

type wndClassEx struct {
	cbSize        uint32
	style         uint32
	lpfnWndProc   uintptr
	cbClsExtra    int32
	cbWndExtra    int32
	hInstance     windows.Handle
	hIcon         windows.Handle
	hCursor       windows.Handle
	hbrBackground windows.Handle
	lpszMenuName  *uint16
	lpszClassName *uint16
	hIconSm       windows.Handle
}

type msg struct {
	hwnd     hwnd
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	pt       point
	lPrivate uint32
}

type point struct {
	x int32
	y int32
}

type rect struct {
	left   int32
	top    int32
	right  int32
	bottom int32
}

type windowPlacement struct {
	length           uint32
	flags            uint32
	showCmd          uint32
	ptMinPosition    point
	ptMaxPosition    point
	rcNormalPosition rect
}

type monitorInfo struct {
	cbSize    uint32
	rcMonitor rect
	rcWork    rect
	dwFlags   uint32
}

// Mirrors PIXELFORMATDESCRIPTOR (must be 40 bytes).
type pixelFormatDescriptor struct {
	nSize           uint16
	nVersion        uint16
	dwFlags         uint32
	iPixelType      byte
	cColorBits      byte
	cRedBits        byte
	cRedShift       byte
	cGreenBits      byte
	cGreenShift     byte
	cBlueBits       byte
	cBlueShift      byte
	cAlphaBits      byte
	cAlphaShift     byte
	cAccumBits      byte
	cAccumRedBits   byte
	cAccumGreenBits byte
	cAccumBlueBits  byte
	cAccumAlphaBits byte
	cDepthBits      byte
	cStencilBits    byte
	cAuxBuffers     byte
	iLayerType      byte
	bReserved       byte
	dwLayerMask     uint32
	dwVisibleMask   uint32
	dwDamageMask    uint32
}

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	gdi32    = windows.NewLazySystemDLL("gdi32.dll")
	opengl32 = windows.NewLazySystemDLL("opengl32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procRegisterClassEx     = user32.NewProc("RegisterClassExW")
	procCreateWindowEx      = user32.NewProc("CreateWindowExW")
	procDefWindowProc       = user32.NewProc("DefWindowProcW")
	procDestroyWindow       = user32.NewProc("DestroyWindow")
	procShowWindow          = user32.NewProc("ShowWindow")
	procUpdateWindow        = user32.NewProc("UpdateWindow")
	procAdjustWindowRectEx  = user32.NewProc("AdjustWindowRectEx")
	procPeekMessage         = user32.NewProc("PeekMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessage     = user32.NewProc("DispatchMessageW")
	procPostQuitMessage     = user32.NewProc("PostQuitMessage")
	procGetDC               = user32.NewProc("GetDC")
	procReleaseDC           = user32.NewProc("ReleaseDC")
	procLoadCursor          = user32.NewProc("LoadCursorW")
	procGetWindowLongPtr    = user32.NewProc("GetWindowLongPtrW")
	procSetWindowLongPtr    = user32.NewProc("SetWindowLongPtrW")
	procGetWindowPlacement  = user32.NewProc("GetWindowPlacement")
	procSetWindowPlacement  = user32.NewProc("SetWindowPlacement")
	procSetWindowPos        = user32.NewProc("SetWindowPos")
	procMonitorFromWindow   = user32.NewProc("MonitorFromWindow")
	procGetMonitorInfo      = user32.NewProc("GetMonitorInfoW")
	procChoosePixelFormat   = gdi32.NewProc("ChoosePixelFormat")
	procDescribePixelFormat = gdi32.NewProc("DescribePixelFormat")
	procGetPixelFormat      = gdi32.NewProc("GetPixelFormat")
	procSetPixelFormat      = gdi32.NewProc("SetPixelFormat")
	procSwapBuffers         = gdi32.NewProc("SwapBuffers")

	procWglCreateContext  = opengl32.NewProc("wglCreateContext")
	procWglMakeCurrent    = opengl32.NewProc("wglMakeCurrent")
	procWglDeleteContext  = opengl32.NewProc("wglDeleteContext")
	procWglGetProcAddress = opengl32.NewProc("wglGetProcAddress")

	procGetModuleHandle = kernel32.NewProc("GetModuleHandleW")
	procSetLastError    = kernel32.NewProc("SetLastError")
)

var (
	// Make the class name unique per-process to avoid CS_OWNDC collisions.
	windowClassName = fmt.Sprintf("SwindowWindow_%d", os.Getpid())
	windowClass     = windows.StringToUTF16Ptr(windowClassName)

	initOnce sync.Once
	initErr  error

	handlers = newRegistry[hwnd]()
)

func mustFindProc(p *windows.LazyProc) error {
	if err := p.Find(); err != nil {
		return fmt.Errorf("missing procedure %q: %w", p.Name, err)
	}
	return nil
}

func validateProcs() error {
	procs := []*windows.LazyProc{
		procRegisterClassEx,
		procCreateWindowEx,
		procAdjustWindowRectEx,
		procGetDC,
		procReleaseDC,
		procDescribePixelFormat,
		procSetPixelFormat,
		procGetPixelFormat,
		procWglCreateContext,
		procWglMakeCurrent,
		procWglDeleteContext,
		procWglGetProcAddress,
	}
	for _, p := range procs {
		if err := mustFindProc(p); err != nil {
			return err
		}
	}
	return nil
}

// initPlatform runs once per process: it checks the Win32 entry points and
// registers the window class shared by every window.
func initPlatform() error {
	initOnce.Do(func() {
		if unsafe.Sizeof(pixelFormatDescriptor{}) != pixelFormatDescSz {
			initErr = fmt.Errorf(
				"PIXELFORMATDESCRIPTOR size mismatch: got %d, want %d",
				unsafe.Sizeof(pixelFormatDescriptor{}),
				pixelFormatDescSz,
			)
			return
		}
		if initErr = validateProcs(); initErr != nil {
			return
		}
		initErr = registerWindowClass()
	})
	return initErr
}

func clearLastError() {
	procSetLastError.Call(0)
}

// winErr wraps the error captured by LazyProc.Call for op.
func winErr(op string, callErr error) error {
	var errno windows.Errno
	if errors.As(callErr, &errno) && errno != 0 {
		return fmt.Errorf("%s failed: %w", op, errno)
	}
	return fmt.Errorf("%s failed", op)
}

type winWindow struct {
	hwnd  hwnd
	hdc   hdc
	ctx   hglrc
	style uint32

	pixelFormatSet bool
	placement      windowPlacement
}

// Open creates and shows a Win32 window whose client area is cfg.Width by
// cfg.Height pixels.
func Open(cfg Config, h Handler) (Native, error) {
	runtime.LockOSThread()

	if err := initPlatform(); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	style := uint32(wsOverlappedWindow | wsClipSiblings | wsClipChildren)
	hwd, dc, err := createWindow(cfg.Title, cfg.Width, cfg.Height, style)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	w := &winWindow{hwnd: hwd, hdc: dc, style: style}
	handlers.attach(hwd, h)

	procShowWindow.Call(uintptr(hwd), swShow)
	procUpdateWindow.Call(uintptr(hwd))

	return w, nil
}

func (w *winWindow) Destroy() {
	if w.hwnd != 0 {
		handlers.detach(w.hwnd)
	}
	if w.ctx != 0 {
		procWglMakeCurrent.Call(0, 0)
		procWglDeleteContext.Call(uintptr(w.ctx))
		w.ctx = 0
	}
	if w.hdc != 0 && w.hwnd != 0 {
		procReleaseDC.Call(uintptr(w.hwnd), uintptr(w.hdc))
		w.hdc = 0
	}
	if w.hwnd != 0 {
		procDestroyWindow.Call(uintptr(w.hwnd))
		w.hwnd = 0
	}
	runtime.UnlockOSThread()
}

func (w *winWindow) Poll() {
	var m msg
	for {
		ret, _, _ := procPeekMessage.Call(
			uintptr(unsafe.Pointer(&m)),
			0,
			0,
			0,
			pmRemove,
		)
		if ret == 0 {
			return
		}
		// WM_QUIT is never delivered to a window procedure; WM_DESTROY has
		// already told the handler.
		if m.message == wmQuit {
			continue
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessage.Call(uintptr(unsafe.Pointer(&m)))
	}
}

func (w *winWindow) Swap() error {
	if w.hdc == 0 {
		return errors.New("swap buffers: window has no device context")
	}
	ret, _, err := procSwapBuffers.Call(uintptr(w.hdc))
	if ret == 0 {
		return winErr("SwapBuffers", err)
	}
	return nil
}

func (w *winWindow) CreateContext(cfg ContextConfig) error {
	if w.ctx != 0 {
		return ErrContextExists
	}
	if !w.pixelFormatSet {
		if _, _, err := chooseAndSetPixelFormat(w.hdc); err != nil {
			return err
		}
		w.pixelFormatSet = true
	}

	var ctx uintptr
	err := withBootstrapContext(w.hdc, func() error {
		createAttribs := wglProcAddress("wglCreateContextAttribsARB")
		if createAttribs == 0 {
			return ErrNoCreateContextAttribs
		}

		if cfg.Legacy {
			clearLastError()
			ret, _, err := procWglCreateContext.Call(uintptr(w.hdc))
			if ret == 0 {
				return winErr("wglCreateContext", err)
			}
			ctx = ret
			return nil
		}

		attribs := []int32{
			wglContextMajorVersionArb, int32(cfg.Major),
			wglContextMinorVersionArb, int32(cfg.Minor),
			wglContextProfileMaskArb, wglContextCoreProfileBitArb,
			wglContextFlagsArb, wglContextForwardCompatibleBitArb,
			0,
		}
		// HGLRC wglCreateContextAttribsARB(HDC hDC, HGLRC hShareContext, const int *attribList);
		clearLastError()
		ret, _, err := syscall.SyscallN(
			createAttribs,
			uintptr(w.hdc),
			0,
			uintptr(unsafe.Pointer(&attribs[0])),
		)
		runtime.KeepAlive(attribs)
		if ret == 0 {
			return fmt.Errorf(
				"OpenGL %d.%d core profile: %w",
				cfg.Major,
				cfg.Minor,
				winErr("wglCreateContextAttribsARB", err),
			)
		}
		ctx = ret
		return nil
	})
	if err != nil {
		return err
	}

	clearLastError()
	ret, _, callErr := procWglMakeCurrent.Call(uintptr(w.hdc), ctx)
	if ret == 0 {
		procWglDeleteContext.Call(ctx)
		return winErr("wglMakeCurrent", callErr)
	}
	w.ctx = hglrc(ctx)
	return nil
}

// withBootstrapContext makes a throwaway legacy context current for the
// duration of fn. wglGetProcAddress only answers while some context is
// current. The throwaway context is unbound and deleted on every path.
func withBootstrapContext(dc hdc, fn func() error) error {
	clearLastError()
	tmp, _, err := procWglCreateContext.Call(uintptr(dc))
	if tmp == 0 {
		return winErr("wglCreateContext (bootstrap)", err)
	}
	defer func() {
		procWglMakeCurrent.Call(0, 0)
		procWglDeleteContext.Call(tmp)
	}()

	clearLastError()
	ret, _, err := procWglMakeCurrent.Call(uintptr(dc), tmp)
	if ret == 0 {
		return winErr("wglMakeCurrent (bootstrap)", err)
	}
	return fn()
}

// wglProcAddress returns 0 for the sentinel values some drivers hand back
// instead of NULL.
func wglProcAddress(name string) uintptr {
	namePtr, err := windows.BytePtrFromString(name)
	if err != nil {
		return 0
	}
	p, _, _ := procWglGetProcAddress.Call(uintptr(unsafe.Pointer(namePtr)))
	switch p {
	case 0, 1, 2, 3, ^uintptr(0):
		return 0
	}
	return p
}

// ProcAddress covers both extension entry points (wglGetProcAddress) and the
// OpenGL 1.1 functions exported directly by opengl32.dll.
func (w *winWindow) ProcAddress(name string) uintptr {
	return resolveProc(name, wglProcAddress, opengl32Export)
}

func opengl32Export(name string) uintptr {
	if err := opengl32.Load(); err != nil {
		return 0
	}
	p, err := windows.GetProcAddress(windows.Handle(opengl32.Handle()), name)
	if err != nil {
		return 0
	}
	return p
}

func (w *winWindow) SetFullscreen(enabled bool) error {
	style, _, _ := procGetWindowLongPtr.Call(uintptr(w.hwnd), gwlStyle)
	windowed := style&wsOverlappedWindow != 0

	if enabled {
		if !windowed {
			return nil
		}
		w.placement = windowPlacement{length: uint32(unsafe.Sizeof(windowPlacement{}))}
		ret, _, err := procGetWindowPlacement.Call(uintptr(w.hwnd), uintptr(unsafe.Pointer(&w.placement)))
		if ret == 0 {
			return winErr("GetWindowPlacement", err)
		}
		monitor, _, _ := procMonitorFromWindow.Call(uintptr(w.hwnd), monitorToPrimary)
		mi := monitorInfo{cbSize: uint32(unsafe.Sizeof(monitorInfo{}))}
		ret, _, err = procGetMonitorInfo.Call(monitor, uintptr(unsafe.Pointer(&mi)))
		if ret == 0 {
			return winErr("GetMonitorInfoW", err)
		}

		procSetWindowLongPtr.Call(uintptr(w.hwnd), gwlStyle, style&^wsOverlappedWindow)
		ret, _, err = procSetWindowPos.Call(
			uintptr(w.hwnd),
			hwndTop,
			uintptr(mi.rcMonitor.left),
			uintptr(mi.rcMonitor.top),
			uintptr(mi.rcMonitor.right-mi.rcMonitor.left),
			uintptr(mi.rcMonitor.bottom-mi.rcMonitor.top),
			swpNoOwnerZOrder|swpFrameChanged,
		)
		if ret == 0 {
			return winErr("SetWindowPos", err)
		}
		return nil
	}

	if windowed {
		return nil
	}
	procSetWindowLongPtr.Call(uintptr(w.hwnd), gwlStyle, style|wsOverlappedWindow)
	procSetWindowPlacement.Call(uintptr(w.hwnd), uintptr(unsafe.Pointer(&w.placement)))
	ret, _, err := procSetWindowPos.Call(
		uintptr(w.hwnd),
		0,
		0, 0, 0, 0,
		swpNoMove|swpNoSize|swpNoZOrder|swpNoOwnerZOrder|swpFrameChanged,
	)
	if ret == 0 {
		return winErr("SetWindowPos", err)
	}
	return nil
}

func registerWindowClass() error {
	cb := windows.NewCallback(wndProc)
	wc := wndClassEx{
		cbSize:        uint32(unsafe.Sizeof(wndClassEx{})),
		style:         csOwnDC | csHRedraw | csVRedraw,
		lpfnWndProc:   cb,
		hInstance:     moduleHandle(),
		hCursor:       loadCursor(),
		hbrBackground: 0,
		lpszClassName: windowClass,
	}

	clearLastError()
	ret, _, err := procRegisterClassEx.Call(uintptr(unsafe.Pointer(&wc)))
	if ret == 0 {
		if errno, ok := err.(windows.Errno); ok && int(errno) == errorClassAlreadyExists {
			return fmt.Errorf("window class already exists unexpectedly: %s", windowClassName)
		}
		return winErr("RegisterClassExW", err)
	}
	return nil
}

// clientToWindowSize grows a client area size by the non-client frame of
// style.
func clientToWindowSize(width, height int, style uint32) (int, int, error) {
	r := rect{right: int32(width), bottom: int32(height)}
	ret, _, err := procAdjustWindowRectEx.Call(
		uintptr(unsafe.Pointer(&r)),
		uintptr(style),
		0,
		0,
	)
	if ret == 0 {
		return 0, 0, winErr("AdjustWindowRectEx", err)
	}
	return int(r.right - r.left), int(r.bottom - r.top), nil
}

func createWindow(title string, width, height int, style uint32) (win hwnd, dc hdc, err error) {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0, 0, fmt.Errorf("window title: %w", err)
	}

	outerW, outerH, err := clientToWindowSize(width, height, style)
	if err != nil {
		return 0, 0, err
	}

	clearLastError()
	ret, _, callErr := procCreateWindowEx.Call(
		0,
		uintptr(unsafe.Pointer(windowClass)),
		uintptr(unsafe.Pointer(titlePtr)),
		uintptr(style),
		cwUseDefault,
		cwUseDefault,
		uintptr(outerW),
		uintptr(outerH),
		0,
		0,
		uintptr(moduleHandle()),
		0,
	)
	win = hwnd(ret)
	if win == 0 {
		return 0, 0, winErr("CreateWindowExW", callErr)
	}

	clearLastError()
	dcRet, _, callErr := procGetDC.Call(uintptr(win))
	if dcRet == 0 {
		procDestroyWindow.Call(uintptr(win))
		return 0, 0, winErr("GetDC", callErr)
	}

	return win, hdc(dcRet), nil
}

func chooseAndSetPixelFormat(dc hdc) (int32, pixelFormatDescriptor, error) {
	desired := pixelFormatDescriptor{
		nSize:        uint16(unsafe.Sizeof(pixelFormatDescriptor{})),
		nVersion:     1,
		dwFlags:      requiredPFDFlags,
		iPixelType:   pfdTypeRGBA,
		cColorBits:   32,
		cAlphaBits:   8,
		cDepthBits:   minDepthBits,
		cStencilBits: minStencilBits,
		iLayerType:   pfdMainPlane,
	}

	// Prefer ChoosePixelFormat; then set using the *described* PFD for that index.
	clearLastError()
	pf, _, err := procChoosePixelFormat.Call(
		uintptr(dc),
		uintptr(unsafe.Pointer(&desired)),
	)
	if pf == 0 {
		return enumAndSetPixelFormat(dc)
	}

	var chosen pixelFormatDescriptor
	clearLastError()
	r, _, err := procDescribePixelFormat.Call(
		uintptr(dc),
		pf,
		uintptr(unsafe.Sizeof(chosen)),
		uintptr(unsafe.Pointer(&chosen)),
	)
	if r == 0 {
		return 0, pixelFormatDescriptor{}, winErr("DescribePixelFormat", err)
	}

	if !acceptablePixelFormat(&chosen) {
		// Fallback: strict enumeration to find a usable OpenGL format.
		return enumAndSetPixelFormat(dc)
	}

	if err := setPixelFormat(dc, pf, &chosen); err != nil {
		return 0, pixelFormatDescriptor{}, err
	}
	return int32(pf), chosen, nil
}

func acceptablePixelFormat(pfd *pixelFormatDescriptor) bool {
	return pfd.dwFlags&requiredPFDFlags == requiredPFDFlags &&
		pfd.iPixelType == pfdTypeRGBA &&
		pfd.cColorBits >= minColorBits &&
		pfd.cDepthBits >= minDepthBits &&
		pfd.cStencilBits >= minStencilBits &&
		pfd.iLayerType == pfdMainPlane
}

func enumAndSetPixelFormat(dc hdc) (int32, pixelFormatDescriptor, error) {
	var pfd pixelFormatDescriptor

	clearLastError()
	maxFormats, _, err := procDescribePixelFormat.Call(
		uintptr(dc),
		1,
		uintptr(unsafe.Sizeof(pfd)),
		uintptr(unsafe.Pointer(&pfd)),
	)
	if maxFormats == 0 {
		return 0, pixelFormatDescriptor{}, winErr("DescribePixelFormat(count)", err)
	}

	for i := uintptr(1); i <= maxFormats; i++ {
		ret, _, _ := procDescribePixelFormat.Call(
			uintptr(dc),
			i,
			uintptr(unsafe.Sizeof(pfd)),
			uintptr(unsafe.Pointer(&pfd)),
		)
		if ret == 0 || !acceptablePixelFormat(&pfd) {
			continue
		}
		if err := setPixelFormat(dc, i, &pfd); err != nil {
			return 0, pixelFormatDescriptor{}, err
		}
		return int32(i), pfd, nil
	}

	return 0, pixelFormatDescriptor{}, ErrNoPixelFormat
}

func setPixelFormat(dc hdc, index uintptr, pfd *pixelFormatDescriptor) error {
	clearLastError()
	ok, _, err := procSetPixelFormat.Call(
		uintptr(dc),
		index,
		uintptr(unsafe.Pointer(pfd)),
	)
	if ok == 0 {
		return fmt.Errorf("pixel format %d: %w", index, winErr("SetPixelFormat", err))
	}

	got, _, _ := procGetPixelFormat.Call(uintptr(dc))
	if got != index {
		return fmt.Errorf("GetPixelFormat mismatch: got=%d want=%d", got, index)
	}
	return nil
}

// wndProc is the window procedure of the shared window class. Messages for
// windows that are not (or no longer) associated with a handler, including
// the ones sent from inside CreateWindowExW, get default processing.
func wndProc(hWnd, uMsg, wParam, lParam uintptr) uintptr {
	h, ok := handlers.lookup(windows.Handle(hWnd))
	if !ok {
		return defWindowProc(hWnd, uMsg, wParam, lParam)
	}

	ev, ok := translateWin32(uint32(uMsg), wParam, lParam)
	if !ok {
		return defWindowProc(hWnd, uMsg, wParam, lParam)
	}

	switch ev.(type) {
	case CloseRequest:
		// The handler decides; DefWindowProc would destroy the window.
		h.HandleEvent(ev)
		return 0
	case Destroyed:
		procPostQuitMessage.Call(0)
		h.HandleEvent(ev)
		return 0
	}

	h.HandleEvent(ev)
	return defWindowProc(hWnd, uMsg, wParam, lParam)
}

func defWindowProc(hWnd, uMsg, wParam, lParam uintptr) uintptr {
	ret, _, _ := procDefWindowProc.Call(hWnd, uMsg, wParam, lParam)
	return ret
}

func loadCursor() windows.Handle {
	const idcArrow = 32512
	ret, _, _ := procLoadCursor.Call(0, uintptr(idcArrow))
	return windows.Handle(ret)
}

func moduleHandle() windows.Handle {
	h, _, _ := procGetModuleHandle.Call(0)
	return windows.Handle(h)
}
