// Package teammap loads the email-to-team mapping used for team rollups.
package teammap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a mapping file and returns email -> team. The file may be JSON
// or YAML and may use either of two shapes:
//
//	{"alice@x.com": "platform"}                 flat email -> team
//	{"platform": ["alice@x.com", "bob@x.com"]}  team -> member emails
//
// The two shapes cannot be mixed. Emails are matched verbatim, no case
// folding.
func Load(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read team map: %w", err)
	}

	var doc map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &doc)
	default:
		err = yaml.Unmarshal(raw, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parse team map %s: %w", path, err)
	}

	mapping := make(map[string]string, len(doc))
	var sawFlat, sawGrouped bool
	for key, value := range doc {
		switch v := value.(type) {
		case string:
			sawFlat = true
			mapping[key] = v
		case []any:
			sawGrouped = true
			for _, member := range v {
				email, ok := member.(string)
				if !ok {
					return nil, fmt.Errorf("team map: team %q has a non-string member %v", key, member)
				}
				if existing, dup := mapping[email]; dup && existing != key {
					return nil, fmt.Errorf("team map: %s is assigned to both %s and %s", email, existing, key)
				}
				mapping[email] = key
			}
		default:
			return nil, fmt.Errorf("team map: entry %q has unsupported value type %T", key, value)
		}
	}
	if sawFlat && sawGrouped {
		return nil, fmt.Errorf("team map: cannot mix email->team and team->members shapes")
	}
	return mapping, nil
}
