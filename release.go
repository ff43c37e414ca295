package sentryzapreporter

import (
	"os"
	"path"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const develVersion = "(devel)"

func releaseName(name, version string) string {
	if name == "" {
		return ""
	}

	if version == "" || version == develVersion {
		return name
	}

	return name + "@" + version
}

// buildRelease returns name@version of the main module as recorded by the Go toolchain.
func buildRelease() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Path == "" {
		return ""
	}

	return releaseName(path.Base(info.Main.Path), info.Main.Version)
}

// executableName returns the file name stem of the program invocation path.
func executableName() string {
	if len(os.Args) == 0 {
		return ""
	}

	return fileStem(os.Args[0])
}

func fileStem(invocation string) string {
	if invocation == "" {
		return ""
	}

	base := filepath.Base(invocation)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}

	if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" {
		return stem
	}

	return base
}
