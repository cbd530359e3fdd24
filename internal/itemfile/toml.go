package itemfile

import (
	"fmt"
	"math"

	"github.com/pelletier/go-toml/v2"

	"fifoq/internal/queue"
)

type tomlDocument struct {
	Items []map[string]any `toml:"items"`
}

func decodeTOML(data []byte) ([]queue.Item, error) {
	var doc tomlDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode toml items: %w", err)
	}
	if len(doc.Items) == 0 {
		return nil, nil
	}
	items := make([]queue.Item, 0, len(doc.Items))
	for idx, fields := range doc.Items {
		item, err := queue.FromAny(fields)
		if err != nil {
			return nil, fmt.Errorf("decode toml items[%d]: %w", idx, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// encodeTOML writes items as [[items]] tables. TOML has no null, so a nil
// item is written as an empty table.
func encodeTOML(items []queue.Item) ([]byte, error) {
	doc := tomlDocument{Items: make([]map[string]any, 0, len(items))}
	for _, item := range items {
		fields := item.ToAny()
		if fields == nil {
			fields = map[string]any{}
		}
		for key, value := range fields {
			if f, ok := value.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
				fields[key] = int64(f)
			}
		}
		doc.Items = append(doc.Items, fields)
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode toml items: %w", err)
	}
	return data, nil
}
