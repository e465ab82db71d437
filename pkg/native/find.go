package native

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Exported symbols of the scanner library.
const (
	SymbolScanDevices = "scan_devices"
	SymbolFreeDevices = "free_devices"
)

// LibraryEnv names a scanner library path that overrides the search.
const LibraryEnv = "HWSCAN_LIBRARY"

// LibraryName returns the platform file name of the scanner library.
func LibraryName() string {
	switch runtime.GOOS {
	case "darwin":
		return "libenc_dec_hwscan.dylib"
	case "windows":
		return "enc_dec_hwscan.dll"
	default:
		return "libenc_dec_hwscan.so"
	}
}

// FindLibrary locates the scanner library: $HWSCAN_LIBRARY, next to the
// executable, then the usual library directories for the OS.
func FindLibrary() (string, error) {
	if p := os.Getenv(LibraryEnv); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("%s: %w", LibraryEnv, err)
		}
		return p, nil
	}

	name := LibraryName()
	candidates := searchDirs()
	for _, dir := range candidates {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%s not found in %s", name, strings.Join(candidates, ", "))
}

func searchDirs() []string {
	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}

	switch runtime.GOOS {
	case "darwin":
		dirs = append(dirs,
			"/opt/homebrew/lib",
			"/usr/local/lib",
		)
	case "linux", "freebsd":
		dirs = append(dirs,
			"/usr/local/lib",
			"/usr/lib",
			"/usr/lib64",
			"/usr/lib/x86_64-linux-gnu",
			"/usr/lib/aarch64-linux-gnu",
		)
	}
	return dirs
}
