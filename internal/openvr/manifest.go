package openvr

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestName is the application manifest filename placed next to the
// executable when no explicit path is configured.
const ManifestName = "vr-bridge.vrmanifest"

// Manifest is the application manifest the runtime reads to know how to
// launch the bridge. Registered once at startup; the runtime remembers
// registered manifests across its own restarts.
type Manifest struct {
	Source       string        `json:"source"`
	Applications []Application `json:"applications"`
}

// Application is a single entry in a Manifest.
type Application struct {
	AppKey             string                        `json:"app_key"`
	LaunchType         string                        `json:"launch_type"`
	BinaryPathWindows  string                        `json:"binary_path_windows"`
	IsDashboardOverlay bool                          `json:"is_dashboard_overlay"`
	Strings            map[string]ApplicationStrings `json:"strings"`
}

// ApplicationStrings is the localised presentation of an Application.
type ApplicationStrings struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DefaultManifestPath returns the manifest location next to the running
// executable.
func DefaultManifestPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), ManifestName), nil
}

// WriteManifest writes the bridge's application manifest to path,
// pointing the runtime at the current executable. Overwrites any
// existing file so a relocated installation heals itself on next start.
//
// Parameters:
//   - path: Destination file, conventionally DefaultManifestPath()
//
// Returns:
//   - error: If the executable cannot be resolved or the write fails
func WriteManifest(path string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating executable: %w", err)
	}

	manifest := Manifest{
		Source: "builtin",
		Applications: []Application{
			{
				AppKey:             AppKey,
				LaunchType:         "binary",
				BinaryPathWindows:  filepath.Base(exe),
				IsDashboardOverlay: false,
				Strings: map[string]ApplicationStrings{
					"en_us": {
						Name:        "VR Bridge",
						Description: "Publishes VR runtime state to MQTT.",
					},
				},
			},
		},
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
