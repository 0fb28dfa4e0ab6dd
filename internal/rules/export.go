package rules

import (
	"encoding/json"
	"fmt"

	"github.com/ludo-technologies/compass/domain"
	"gopkg.in/yaml.v3"
)

// Export renders a language's built-in rules as an override file in the
// given format (toml, yaml or json)
func Export(lang domain.Language, format string) ([]byte, error) {
	data, err := BuiltinFile(lang)
	if err != nil {
		return nil, err
	}

	switch format {
	case "toml", "":
		return data, nil
	case "yaml", "json":
	default:
		return nil, domain.NewUnsupportedFormatError(format)
	}

	f, err := Decode(data, "toml")
	if err != nil {
		return nil, domain.NewConfigError(fmt.Sprintf("cannot decode built-in rules for %s", lang), err)
	}
	header := "Rules for " + lang.DisplayName() + ". This file replaces the built-in rule set when passed as an override."

	if format == "yaml" {
		out, err := yaml.Marshal(f)
		if err != nil {
			return nil, domain.NewOutputError("failed to encode rules as YAML", err)
		}
		return append([]byte("# "+header+"\n"), out...), nil
	}

	out, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, domain.NewOutputError("failed to encode rules as JSON", err)
	}
	return append(out, '\n'), nil
}

// FormatForPath returns the rule file format implied by a file name
func FormatForPath(path string) string {
	return formatForPath(path)
}
