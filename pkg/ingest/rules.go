package ingest

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/TechXTT/dbload/pkg/internal/typeconv"
)

// DefaultRules returns the built-in rules keyed by table name.
func DefaultRules() map[string]Rule {
	return map[string]Rule{
		"users": {
			Required: []string{"id", "name", "email"},
			Types: []FieldType{
				{"id", KindInt},
				{"name", KindString},
				{"email", KindString},
				{"age", KindInt},
				{"join_date", KindTime},
			},
		},
		"products": {
			Required: []string{"product_id", "name", "price"},
			Types: []FieldType{
				{"product_id", KindString},
				{"name", KindString},
				{"price", KindFloat},
				{"stock", KindInt},
			},
		},
		"orders": {
			Required: []string{"order_id", "user_id", "product_id", "quantity", "order_date"},
			Types: []FieldType{
				{"order_id", KindString},
				{"user_id", KindInt},
				{"product_id", KindString},
				{"quantity", KindInt},
				{"order_date", KindTime},
			},
		},
		"notes": {
			Required: []string{"content"},
			Types:    []FieldType{{"content", KindString}},
		},
	}
}

// LoadRules reads rules from a JSON file shaped as
//
//	{"users": {"required_fields": ["id"], "data_types": {"id": "int"}}}
//
// Type order follows the file.
func LoadRules(path string) (map[string]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes the LoadRules document format.
func ParseRules(data []byte) (map[string]Rule, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("rules: invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.New("rules: top level must be an object")
	}
	rules := map[string]Rule{}
	var err error
	root.ForEach(func(table, body gjson.Result) bool {
		var r Rule
		for _, f := range body.Get("required_fields").Array() {
			r.Required = append(r.Required, f.String())
		}
		body.Get("data_types").ForEach(func(name, kind gjson.Result) bool {
			var k typeconv.Kind
			k, err = typeconv.ParseKind(kind.String())
			if err != nil {
				err = fmt.Errorf("rules %s.%s: %w", table.String(), name.String(), err)
				return false
			}
			r.Types = append(r.Types, FieldType{Name: name.String(), Kind: k})
			return true
		})
		if err != nil {
			return false
		}
		rules[table.String()] = r
		return true
	})
	if err != nil {
		return nil, err
	}
	return rules, nil
}
