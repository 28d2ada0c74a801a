// Package ffi binds the native bridge library with purego and exposes it as
// an rtc.Transport.
package ffi

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
)

var (
	// ErrLibraryNotLoaded is returned when the bridge library hasn't been loaded.
	ErrLibraryNotLoaded = errors.New("rtcbridge library not loaded")

	// ErrLibraryNotFound is returned when the bridge library cannot be found.
	ErrLibraryNotFound = errors.New("rtcbridge library not found")

	// Native error sentinels, matching the library's return codes.
	ErrInvalidParam   = errors.New("invalid parameter")
	ErrInitFailed     = errors.New("initialization failed")
	ErrOutOfMemory    = errors.New("out of memory")
	ErrNotSupported   = errors.New("not supported")
	ErrBufferTooSmall = errors.New("buffer too small")
	ErrNotFound       = errors.New("not found")
)

// Return codes of the bridge library (int32 to match C int).
const (
	BridgeOK                int32 = 0
	BridgeErrInvalidParam   int32 = -1
	BridgeErrInitFailed     int32 = -2
	BridgeErrOutOfMemory    int32 = -5
	BridgeErrNotSupported   int32 = -6
	BridgeErrBufferTooSmall int32 = -8
	BridgeErrNotFound       int32 = -9
)

// LibraryPathEnv names the environment variable that overrides the library
// search.
const LibraryPathEnv = "RTCBRIDGE_IRIS_PATH"

var (
	libHandle uintptr
	libLoaded atomic.Bool
	libMu     sync.Mutex
)

// LoadLibrary loads the bridge shared library.
// It searches in the following locations:
// 1. Path specified by RTCBRIDGE_IRIS_PATH
// 2. ./lib/{os}_{arch}/ relative to the executable, the working directory
// and the module root
// 3. The system library paths
func LoadLibrary() error {
	libMu.Lock()
	defer libMu.Unlock()

	if libLoaded.Load() {
		return nil
	}

	libPath, ok := findLocalLibrary()
	if !ok {
		libPath = getLibraryName()
	}

	handle, err := dlopenLibrary(libPath, RTLD_NOW|RTLD_GLOBAL)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLibraryNotFound, libPath, err)
	}

	libHandle = handle
	if err := registerFunctions(handle); err != nil {
		_ = dlcloseLibrary(handle)
		libHandle = 0
		return err
	}

	libLoaded.Store(true)
	return nil
}

// IsLoaded returns true if the bridge library is loaded.
func IsLoaded() bool {
	return libLoaded.Load()
}

// Close unloads the bridge library.
func Close() error {
	libMu.Lock()
	defer libMu.Unlock()

	if !libLoaded.Load() {
		return nil
	}

	if err := dlcloseLibrary(libHandle); err != nil {
		return err
	}

	libLoaded.Store(false)
	libHandle = 0
	return nil
}

// ExpectedBridgeVersion is the library ABI version this package binds.
const ExpectedBridgeVersion = "1.0"

// ErrVersionMismatch is returned when the library ABI version differs.
var ErrVersionMismatch = errors.New("bridge version mismatch")

// BridgeVersion returns the library ABI version, or "" when not loaded.
func BridgeVersion() string {
	if !libLoaded.Load() {
		return ""
	}
	return bridgeVersion()
}

// CheckVersion verifies the loaded library speaks the expected ABI.
func CheckVersion() error {
	if !libLoaded.Load() {
		return ErrLibraryNotLoaded
	}
	if v := BridgeVersion(); v != ExpectedBridgeVersion {
		return fmt.Errorf("%w: got %q, expected %q", ErrVersionMismatch, v, ExpectedBridgeVersion)
	}
	return nil
}

func findLocalLibrary() (string, bool) {
	if path := os.Getenv(LibraryPathEnv); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}

	libName := getLibraryName()
	platformDir := fmt.Sprintf("%s_%s", runtime.GOOS, runtime.GOARCH)

	var searchPaths []string

	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		searchPaths = append(searchPaths, filepath.Join(execDir, "lib", platformDir, libName))
	}

	if wd, err := os.Getwd(); err == nil {
		searchPaths = append(searchPaths,
			filepath.Join(wd, "lib", platformDir, libName),
			filepath.Join(wd, "..", "lib", platformDir, libName),
			filepath.Join(wd, "..", "..", "lib", platformDir, libName),
		)
	}

	// thisFile is .../internal/ffi/lib.go
	if _, thisFile, _, ok := runtime.Caller(0); ok {
		moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
		searchPaths = append(searchPaths, filepath.Join(moduleRoot, "lib", platformDir, libName))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			absPath, _ := filepath.Abs(path)
			return absPath, true
		}
	}

	return "", false
}

func getLibraryName() string {
	return getLibraryNameFor(runtime.GOOS)
}

func getLibraryNameFor(goos string) string {
	switch goos {
	case "darwin":
		return "librtcbridge_iris.dylib"
	case "windows":
		return "rtcbridge_iris.dll"
	default:
		return "librtcbridge_iris.so"
	}
}

// BridgeError converts a library return code to a Go error.
// Returns sentinel errors that support errors.Is() comparisons.
func BridgeError(code int32) error {
	switch code {
	case BridgeOK:
		return nil
	case BridgeErrInvalidParam:
		return ErrInvalidParam
	case BridgeErrInitFailed:
		return ErrInitFailed
	case BridgeErrOutOfMemory:
		return ErrOutOfMemory
	case BridgeErrNotSupported:
		return ErrNotSupported
	case BridgeErrBufferTooSmall:
		return ErrBufferTooSmall
	case BridgeErrNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("unknown bridge error: %d", code)
	}
}
