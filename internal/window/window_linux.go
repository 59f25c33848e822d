//go:build linux

package window

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"unsafe"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/ebitengine/purego"
)

const (
	// GLX 1.3 framebuffer configuration attributes.
	glxDoubleBuffer = 5
	glxRedSize      = 8
	glxGreenSize    = 9
	glxBlueSize     = 10
	glxAlphaSize    = 11
	glxDepthSize    = 12
	glxStencilSize  = 13
	glxXVisualType  = 0x22
	glxTrueColor    = 0x8002
	glxDrawableType = 0x8010
	glxRenderType   = 0x8011
	glxXRenderable  = 0x8012
	glxWindowBit    = 0x1
	glxRGBABit      = 0x1
	glxRGBAType     = 0x8014
	glxNone         = 0

	// GLX_ARB_create_context / GLX_ARB_create_context_profile.
	glxContextMajorVersionArb         = 0x2091
	glxContextMinorVersionArb         = 0x2092
	glxContextFlagsArb                = 0x2094
	glxContextProfileMaskArb          = 0x9126
	glxContextCoreProfileBitArb       = 0x1
	glxContextForwardCompatibleBitArb = 0x2

	inputOutput = 1
	allocNone   = 0

	structureNotifyMask = 1 << 17
	keyPressMask        = 1 << 0
	keyReleaseMask      = 1 << 1
	buttonPressMask     = 1 << 2
	buttonReleaseMask   = 1 << 3
	pointerMotionMask   = 1 << 6

	cwBorderPixel = 1 << 3
	cwEventMask   = 1 << 11
	cwColormap    = 1 << 13

	// _NET_WM_STATE actions.
	netWMStateRemove = 0
	netWMStateAdd    = 1
)

type xVisualInfo struct {
	Visual       uintptr
	VisualID     uint64
	Screen       int32
	Depth        int32
	Class        int32
	RedMask      uint64
	GreenMask    uint64
	BlueMask     uint64
	ColormapSize int32
	BitsPerRGB   int32
}

type xSetWindowAttributes struct {
	BackgroundPixmap uintptr
	BackgroundPixel  uint64
	BorderPixmap     uint64
	BorderPixel      uint64
	BitGravity       int32
	WinGravity       int32
	BackingStore     int32
	BackingPlanes    uint64
	BackingPixel     uint64
	SaveUnder        int32
	EventMask        int64
	DoNotPropagate   int64
	OverrideRedirect int32
	Colormap         uintptr
	Cursor           uintptr
}

var (
	x11lib uintptr
	gllib  uintptr

	xOpenDisplay         func(*byte) uintptr
	xCloseDisplay        func(uintptr) int32
	xDefaultScreen       func(uintptr) int32
	xRootWindow          func(uintptr, int32) uintptr
	xCreateColormap      func(uintptr, uintptr, uintptr, int32) uintptr
	xFreeColormap        func(uintptr, uintptr) int32
	xCreateWindow        func(uintptr, uintptr, int32, int32, uint32, uint32, uint32, int32, uint32, uintptr, uint64, unsafe.Pointer) uintptr
	xDestroyWindow       func(uintptr, uintptr) int32
	xMapWindow           func(uintptr, uintptr) int32
	xStoreName           func(uintptr, uintptr, *byte) int32
	xInternAtom          func(uintptr, *byte, int32) uintptr
	xSetWMProtocols      func(uintptr, uintptr, *uintptr, int32) int32
	xPending             func(uintptr) int32
	xNextEvent           func(uintptr, unsafe.Pointer) int32
	xSync                func(uintptr, int32) int32
	xFree                func(unsafe.Pointer) int32
	xkbKeycodeToKeysym   func(uintptr, uint8, int32, int32) uint64
	xSetErrorHandler     func(uintptr) uintptr
	glxChooseFBConfig    func(uintptr, int32, *int32, *int32) *uintptr
	glxGetVisualFromFBC  func(uintptr, uintptr) *xVisualInfo
	glxCreateNewContext  func(uintptr, uintptr, int32, uintptr, int32) uintptr
	glxMakeCurrent       func(uintptr, uintptr, uintptr) int32
	glxSwapBuffers       func(uintptr, uintptr)
	glxDestroyContext    func(uintptr, uintptr)
	glxGetProcAddressARB func(*byte) uintptr

	initOnce sync.Once
	initErr  error

	// trapMu serialises trapXErrors; Xlib has one error handler per process.
	trapMu        sync.Mutex
	trap          xErrorTrap
	errorCallback uintptr

	handlers = newRegistry[uintptr]()
)

// initPlatform loads Xlib and libGL once per process.
func initPlatform() error {
	initOnce.Do(func() {
		var err error
		x11lib, err = purego.Dlopen("libX11.so.6", purego.RTLD_LAZY|purego.RTLD_GLOBAL)
		if err != nil {
			initErr = fmt.Errorf("load libX11: %w", err)
			return
		}
		gllib, err = purego.Dlopen("libGL.so.1", purego.RTLD_LAZY|purego.RTLD_GLOBAL)
		if err != nil {
			initErr = fmt.Errorf("load libGL: %w", err)
			return
		}
		registerX11()
		registerGLX()
	})
	return initErr
}

func registerX11() {
	purego.RegisterLibFunc(&xOpenDisplay, x11lib, "XOpenDisplay")
	purego.RegisterLibFunc(&xCloseDisplay, x11lib, "XCloseDisplay")
	purego.RegisterLibFunc(&xDefaultScreen, x11lib, "XDefaultScreen")
	purego.RegisterLibFunc(&xRootWindow, x11lib, "XRootWindow")
	purego.RegisterLibFunc(&xCreateColormap, x11lib, "XCreateColormap")
	purego.RegisterLibFunc(&xFreeColormap, x11lib, "XFreeColormap")
	purego.RegisterLibFunc(&xCreateWindow, x11lib, "XCreateWindow")
	purego.RegisterLibFunc(&xDestroyWindow, x11lib, "XDestroyWindow")
	purego.RegisterLibFunc(&xMapWindow, x11lib, "XMapWindow")
	purego.RegisterLibFunc(&xStoreName, x11lib, "XStoreName")
	purego.RegisterLibFunc(&xInternAtom, x11lib, "XInternAtom")
	purego.RegisterLibFunc(&xSetWMProtocols, x11lib, "XSetWMProtocols")
	purego.RegisterLibFunc(&xPending, x11lib, "XPending")
	purego.RegisterLibFunc(&xNextEvent, x11lib, "XNextEvent")
	purego.RegisterLibFunc(&xSync, x11lib, "XSync")
	purego.RegisterLibFunc(&xFree, x11lib, "XFree")
	purego.RegisterLibFunc(&xkbKeycodeToKeysym, x11lib, "XkbKeycodeToKeysym")
	purego.RegisterLibFunc(&xSetErrorHandler, x11lib, "XSetErrorHandler")

	// Callback slots are never released, so there is exactly one.
	errorCallback = purego.NewCallback(func(display uintptr, ev *xErrorEvent) uintptr {
		trap.record(ev)
		return 0
	})
}

// trapXErrors runs fn with Xlib's error handler replaced, so a rejected
// request is returned as an *XError instead of terminating the process.
// Requests made by fn are flushed before the previous handler returns.
func trapXErrors(dpy uintptr, fn func()) error {
	trapMu.Lock()
	defer trapMu.Unlock()

	// Errors from earlier requests belong to the previous handler.
	xSync(dpy, 0)
	trap.take()
	prev := xSetErrorHandler(errorCallback)
	fn()
	xSync(dpy, 0)
	xSetErrorHandler(prev)
	return trap.take()
}

func registerGLX() {
	purego.RegisterLibFunc(&glxChooseFBConfig, gllib, "glXChooseFBConfig")
	purego.RegisterLibFunc(&glxGetVisualFromFBC, gllib, "glXGetVisualFromFBConfig")
	purego.RegisterLibFunc(&glxCreateNewContext, gllib, "glXCreateNewContext")
	purego.RegisterLibFunc(&glxMakeCurrent, gllib, "glXMakeCurrent")
	purego.RegisterLibFunc(&glxSwapBuffers, gllib, "glXSwapBuffers")
	purego.RegisterLibFunc(&glxDestroyContext, gllib, "glXDestroyContext")
	purego.RegisterLibFunc(&glxGetProcAddressARB, gllib, "glXGetProcAddressARB")
}

type x11Window struct {
	display  uintptr
	window   uintptr
	colormap uintptr
	fbConfig uintptr
	ctx      uintptr
	wmDelete uintptr

	// xu is a second connection used for EWMH requests. nil when it could
	// not be opened.
	xu *xgbutil.XUtil

	size lastSize
	log  *slog.Logger
}

// Open creates and maps an X11 window. The framebuffer configuration used by
// CreateContext is chosen here since the window visual derives from it.
func Open(cfg Config, h Handler) (Native, error) {
	runtime.LockOSThread()

	w, err := openX11(cfg)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}
	handlers.attach(w.window, h)
	return w, nil
}

func openX11(cfg Config) (*x11Window, error) {
	if err := initPlatform(); err != nil {
		return nil, err
	}

	dpy := xOpenDisplay(nil)
	if dpy == 0 {
		return nil, errors.New("XOpenDisplay failed")
	}
	w := &x11Window{
		display: dpy,
		size:    lastSize{width: cfg.Width, height: cfg.Height},
		log:     cfg.logger(),
	}

	screen := xDefaultScreen(dpy)
	root := xRootWindow(dpy, screen)

	fbc, visual, err := chooseFBConfig(dpy, screen)
	if err != nil {
		w.release()
		return nil, err
	}
	w.fbConfig = fbc
	defer xFree(unsafe.Pointer(visual))

	w.colormap = xCreateColormap(dpy, root, visual.Visual, allocNone)

	var swa xSetWindowAttributes
	swa.Colormap = w.colormap
	swa.EventMask = structureNotifyMask | keyPressMask | keyReleaseMask |
		buttonPressMask | buttonReleaseMask | pointerMotionMask

	w.window = xCreateWindow(
		dpy, root,
		0, 0,
		uint32(cfg.Width), uint32(cfg.Height),
		0,
		visual.Depth,
		inputOutput,
		visual.Visual,
		cwBorderPixel|cwColormap|cwEventMask,
		unsafe.Pointer(&swa),
	)
	if w.window == 0 {
		w.release()
		return nil, errors.New("XCreateWindow failed")
	}

	xStoreName(dpy, w.window, cString(cfg.Title))
	w.wmDelete = xInternAtom(dpy, cString("WM_DELETE_WINDOW"), 0)
	xSetWMProtocols(dpy, w.window, &w.wmDelete, 1)
	xMapWindow(dpy, w.window)

	// The window must exist server-side before the xgb connection refers
	// to it.
	xSync(dpy, 0)
	w.openEWMH(cfg.Title)

	return w, nil
}

// openEWMH publishes the UTF-8 title. Failures are logged; XStoreName has
// already set a Latin-1 title.
func (w *x11Window) openEWMH(title string) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		w.log.Warn("EWMH connection unavailable", "err", err)
		return
	}
	w.xu = xu
	if err := ewmh.WmNameSet(xu, xproto.Window(w.window), title); err != nil {
		w.log.Warn("set _NET_WM_NAME", "err", err)
	}
}

func chooseFBConfig(dpy uintptr, screen int32) (uintptr, *xVisualInfo, error) {
	attrs := []int32{
		glxXRenderable, 1,
		glxDrawableType, glxWindowBit,
		glxRenderType, glxRGBABit,
		glxXVisualType, glxTrueColor,
		glxRedSize, 8,
		glxGreenSize, 8,
		glxBlueSize, 8,
		glxAlphaSize, 8,
		glxDepthSize, 24,
		glxStencilSize, 8,
		glxDoubleBuffer, 1,
		glxNone,
	}
	var n int32
	configs := glxChooseFBConfig(dpy, screen, &attrs[0], &n)
	if configs == nil || n == 0 {
		return 0, nil, ErrNoPixelFormat
	}
	// The first entry is the best match.
	fbc := *configs
	xFree(unsafe.Pointer(configs))

	visual := glxGetVisualFromFBC(dpy, fbc)
	if visual == nil {
		return 0, nil, fmt.Errorf("glXGetVisualFromFBConfig: %w", ErrNoPixelFormat)
	}
	return fbc, visual, nil
}

// release frees whatever has been acquired so far. Safe on a partially
// opened window.
func (w *x11Window) release() {
	if w.ctx != 0 {
		glxMakeCurrent(w.display, 0, 0)
		glxDestroyContext(w.display, w.ctx)
		w.ctx = 0
	}
	if w.window != 0 {
		xDestroyWindow(w.display, w.window)
		w.window = 0
	}
	if w.colormap != 0 {
		xFreeColormap(w.display, w.colormap)
		w.colormap = 0
	}
	if w.display != 0 {
		xCloseDisplay(w.display)
		w.display = 0
	}
	if w.xu != nil {
		w.xu.Conn().Close()
		w.xu = nil
	}
}

func (w *x11Window) Destroy() {
	if w.window != 0 {
		handlers.detach(w.window)
	}
	w.release()
	runtime.UnlockOSThread()
}

func (w *x11Window) keysym(code uint32) uint64 {
	return xkbKeycodeToKeysym(w.display, uint8(code), 0, 0)
}

func (w *x11Window) Poll() {
	if w.display == 0 {
		return
	}
	for xPending(w.display) > 0 {
		var ev xEvent
		xNextEvent(w.display, unsafe.Pointer(&ev))

		h, ok := handlers.lookup(ev.window())
		if !ok {
			continue
		}
		out, ok := translateX11(&ev, w.keysym, w.wmDelete)
		if !ok {
			continue
		}
		if r, isResize := out.(Resize); isResize && !w.size.changed(r) {
			continue
		}
		h.HandleEvent(out)
	}
}

func (w *x11Window) Swap() error {
	if w.display == 0 || w.window == 0 {
		return errors.New("swap buffers: window is not open")
	}
	glxSwapBuffers(w.display, w.window)
	return nil
}

func (w *x11Window) CreateContext(cfg ContextConfig) error {
	if w.ctx != 0 {
		return ErrContextExists
	}

	var ctx uintptr
	err := w.withBootstrapContext(func() error {
		var createAttribs func(dpy, fbc, share uintptr, direct int32, attribs *int32) uintptr
		sym := glxGetProcAddressARB(cString("glXCreateContextAttribsARB"))
		if sym == 0 {
			return ErrNoCreateContextAttribs
		}

		if cfg.Legacy {
			return w.createContext("glXCreateNewContext", &ctx, func() uintptr {
				return glxCreateNewContext(w.display, w.fbConfig, glxRGBAType, 0, 1)
			})
		}

		purego.RegisterFunc(&createAttribs, sym)
		attribs := []int32{
			glxContextMajorVersionArb, int32(cfg.Major),
			glxContextMinorVersionArb, int32(cfg.Minor),
			glxContextProfileMaskArb, glxContextCoreProfileBitArb,
			glxContextFlagsArb, glxContextForwardCompatibleBitArb,
			glxNone,
		}
		err := w.createContext("glXCreateContextAttribsARB", &ctx, func() uintptr {
			return createAttribs(w.display, w.fbConfig, 0, 1, &attribs[0])
		})
		if err != nil {
			return fmt.Errorf("OpenGL %d.%d core profile: %w", cfg.Major, cfg.Minor, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := w.makeCurrent(ctx); err != nil {
		glxDestroyContext(w.display, ctx)
		return err
	}
	w.ctx = ctx
	return nil
}

// createContext stores the context made by create in *dst. A context created
// alongside an X error is destroyed.
func (w *x11Window) createContext(op string, dst *uintptr, create func() uintptr) error {
	var ctx uintptr
	xerr := trapXErrors(w.display, func() { ctx = create() })
	if xerr != nil {
		if ctx != 0 {
			glxDestroyContext(w.display, ctx)
		}
		return fmt.Errorf("%s: %w", op, xerr)
	}
	if ctx == 0 {
		return fmt.Errorf("%s failed", op)
	}
	*dst = ctx
	return nil
}

func (w *x11Window) makeCurrent(ctx uintptr) error {
	var ok int32
	if xerr := trapXErrors(w.display, func() { ok = glxMakeCurrent(w.display, w.window, ctx) }); xerr != nil {
		return fmt.Errorf("glXMakeCurrent: %w", xerr)
	}
	if ok == 0 {
		return errors.New("glXMakeCurrent failed")
	}
	return nil
}

// withBootstrapContext keeps a throwaway legacy context current on the
// window while fn runs, then unbinds and destroys it.
func (w *x11Window) withBootstrapContext(fn func() error) error {
	var tmp uintptr
	if err := w.createContext("glXCreateNewContext (bootstrap)", &tmp, func() uintptr {
		return glxCreateNewContext(w.display, w.fbConfig, glxRGBAType, 0, 1)
	}); err != nil {
		return err
	}
	defer func() {
		glxMakeCurrent(w.display, 0, 0)
		glxDestroyContext(w.display, tmp)
	}()

	if err := w.makeCurrent(tmp); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	return fn()
}

func (w *x11Window) ProcAddress(name string) uintptr {
	return resolveProc(name, glxProcAddress, libGLSymbol)
}

func glxProcAddress(name string) uintptr {
	return glxGetProcAddressARB(cString(name))
}

func libGLSymbol(name string) uintptr {
	p, err := purego.Dlsym(gllib, name)
	if err != nil {
		return 0
	}
	return p
}

func (w *x11Window) SetFullscreen(enabled bool) error {
	if w.xu == nil {
		return errors.New("fullscreen: no EWMH connection")
	}
	action := netWMStateRemove
	if enabled {
		action = netWMStateAdd
	}
	if err := ewmh.WmStateReq(w.xu, xproto.Window(w.window), action, "_NET_WM_STATE_FULLSCREEN"); err != nil {
		return fmt.Errorf("fullscreen: %w", err)
	}
	return nil
}

func cString(s string) *byte {
	b := append([]byte(s), 0)
	return &b[0]
}
