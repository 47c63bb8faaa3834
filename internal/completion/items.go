package completion

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// nameKeys lists, per section, the payload fields tried for an item label.
var nameKeys = map[Section][]string{
	Sites:         {"name", "domain"},
	Subscriptions: {"name", "keyword"},
	Plugins:       {"plugin_name", "name"},
}

// ItemsFromPayload extracts completable items from a list payload. Elements
// without an id are skipped; a bare string element is its own id.
func ItemsFromPayload(section Section, data []byte) ([]Item, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: expected a list: %w", section, err)
	}

	items := make([]Item, 0, len(raw))
	for _, r := range raw {
		var s string
		if json.Unmarshal(r, &s) == nil {
			if s != "" {
				items = append(items, Item{ID: s})
			}
			continue
		}

		var obj map[string]any
		if json.Unmarshal(r, &obj) != nil {
			continue
		}
		id := scalar(obj["id"])
		if id == "" {
			continue
		}
		item := Item{ID: id}
		for _, k := range nameKeys[section] {
			if name := scalar(obj[k]); name != "" {
				item.Name = name
				break
			}
		}
		if section == Subscriptions {
			item.Name = subscriptionLabel(item.Name, obj)
		}
		items = append(items, item)
	}
	return items, nil
}

// subscriptionLabel adds the year and season: "Dune (2021)", "Andor S2".
func subscriptionLabel(name string, obj map[string]any) string {
	if name == "" {
		return ""
	}
	if year := scalar(obj["year"]); year != "" {
		name += " (" + year + ")"
	}
	if season := scalar(obj["season"]); season != "" && season != "0" {
		name += " S" + season
	}
	return name
}

func scalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	default:
		return ""
	}
}
