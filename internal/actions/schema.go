package actions

// KindCallService is the only executable action kind. Entries of any other
// kind are parsed and kept but never produce a binding.
const KindCallService = "call_service"

// Document is the root structure of config.yaml.
type Document struct {
	Host    string  `yaml:"hass_host"`
	Port    int     `yaml:"hass_port"`
	Token   string  `yaml:"hass_token"`
	Actions []Entry `yaml:"actions"`
}

// Entry is one declarative rule mapping a chord to an action.
//
// Payload holds the decoded service_data mapping; it is JSON-compatible
// (map[string]any, []any and scalars) so it can be sent as-is.
type Entry struct {
	Kind        string   `yaml:"action_type"`
	Description string   `yaml:"description"`
	Keys        []string `yaml:"keys"`
	Domain      string   `yaml:"domain,omitempty"`
	Service     string   `yaml:"service,omitempty"`
	Payload     any      `yaml:"service_data,omitempty"`
}

// Executable reports whether the entry compiles to a binding.
func (e Entry) Executable() bool {
	return e.Kind == KindCallService
}
