package github

import (
	"encoding/json"

	"oss-activity/snapshot"
)

// LoadItems reads a raw activity snapshot. Elements that do not decode as
// items are skipped and counted in skipped.
func LoadItems(path string) (items []Item, skipped int, err error) {
	raws, err := snapshot.ReadArray(path)
	if err != nil {
		return nil, 0, err
	}
	return DecodeItems(raws)
}

// DecodeItems decodes raw snapshot elements, skipping malformed ones.
func DecodeItems(raws []json.RawMessage) (items []Item, skipped int, err error) {
	items = make([]Item, 0, len(raws))
	for _, raw := range raws {
		var it Item
		if err := json.Unmarshal(raw, &it); err != nil {
			skipped++
			continue
		}
		items = append(items, it)
	}
	return items, skipped, nil
}
