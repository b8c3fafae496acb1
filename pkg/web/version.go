package web

import "sync"

// VersionInfo describes the running build, as reported by /api/status.
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Built   string `json:"built"`
}

var (
	verMu sync.RWMutex
	ver   = VersionInfo{Version: "dev", Commit: "unknown", Built: "unknown"}
)

// SetVersionInfo sets the build information exposed by the web API
func SetVersionInfo(info VersionInfo) {
	verMu.Lock()
	defer verMu.Unlock()
	ver = info
}

// GetVersionInfo returns the currently set build information
func GetVersionInfo() VersionInfo {
	verMu.RLock()
	defer verMu.RUnlock()
	return ver
}
