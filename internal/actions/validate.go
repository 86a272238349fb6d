package actions

import (
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/keys"
)

// Validate checks the whole document and returns every problem found,
// joined. A single bad entry is enough to reject the document.
func Validate(doc *Document) error {
	var errs []error

	if doc.Host == "" {
		errs = append(errs, &ValidationError{Entry: -1, Field: "hass_host", Reason: "missing key 'hass_host'"})
	}
	if doc.Port < 1 || doc.Port > 65535 {
		errs = append(errs, &ValidationError{
			Entry:  -1,
			Field:  "hass_port",
			Reason: fmt.Sprintf("hass_port must be between 1 and 65535, got %d", doc.Port),
		})
	}
	if doc.Token == "" {
		errs = append(errs, &ValidationError{Entry: -1, Field: "hass_token", Reason: "missing key 'hass_token'"})
	}

	// chord key -> index of the first call_service entry using it
	chords := make(map[string]int, len(doc.Actions))

	for i, entry := range doc.Actions {
		chord, err := validateKeys(i, entry)
		if err != nil {
			errs = append(errs, err...)
			continue
		}

		if !entry.Executable() {
			continue
		}

		errs = append(errs, validateCallService(i, entry)...)

		if first, dup := chords[chord.Key()]; dup {
			errs = append(errs, &ValidationError{
				Entry:       i,
				Description: entry.Description,
				Field:       "keys",
				Reason: fmt.Sprintf("chord %s is already bound by action #%d %q",
					chord, first+1, doc.Actions[first].Description),
			})
			continue
		}
		chords[chord.Key()] = i
	}

	return errors.Join(errs...)
}

func validateKeys(i int, entry Entry) (keys.Chord, []error) {
	var errs []error

	if len(entry.Keys) == 0 {
		return nil, []error{&ValidationError{
			Entry:       i,
			Description: entry.Description,
			Field:       "keys",
			Reason:      "no keys configured",
		}}
	}

	seen := make(map[keys.KeyCode]string, len(entry.Keys))
	codes := make([]keys.KeyCode, 0, len(entry.Keys))
	for _, token := range entry.Keys {
		code, err := keys.Parse(token)
		if err != nil {
			errs = append(errs, &ValidationError{
				Entry:       i,
				Description: entry.Description,
				Field:       "keys",
				Key:         token,
				Reason:      fmt.Sprintf("invalid key '%s' in config file", token),
			})
			continue
		}
		if prev, dup := seen[code]; dup {
			errs = append(errs, &ValidationError{
				Entry:       i,
				Description: entry.Description,
				Field:       "keys",
				Key:         token,
				Reason:      fmt.Sprintf("key '%s' is listed twice (as '%s')", token, prev),
			})
			continue
		}
		seen[code] = token
		codes = append(codes, code)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return keys.NewChord(codes...), nil
}

func validateCallService(i int, entry Entry) []error {
	var errs []error
	missing := func(field string) {
		errs = append(errs, &ValidationError{
			Entry:       i,
			Description: entry.Description,
			Field:       field,
			Reason:      fmt.Sprintf("action type is '%s' but config file is missing key '%s'", KindCallService, field),
		})
	}

	if entry.Domain == "" {
		missing("domain")
	}
	if entry.Service == "" {
		missing("service")
	}
	if entry.Payload == nil {
		missing("service_data")
	}
	return errs
}
