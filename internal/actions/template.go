package actions

import (
	"fmt"
	"os"
	"path/filepath"
)

// Template is written on first run. It decodes, but fails validation until
// host and token are filled in.
const Template = `# example config.yaml
hass_host: # replace with your home assistant ip or domain (string)
hass_port: 8123 # replace with your home assistant websocket port (number)
hass_token: # replace with a long lived access token (string)
actions:
  - action_type: call_service
    description: Toggle Lab lights when pressing LeftControl & R
    keys:
      - LeftControl
      - R
    domain: light
    service: toggle
    service_data:
      entity_id: light.lab_lights
`

// WriteTemplate creates path (and its directory) with the example config.
// An existing file is never overwritten.
func WriteTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("can't create config dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write config template: %w", err)
	}
	if _, err := f.WriteString(Template); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write config template: %w", err)
	}
	return f.Close()
}
