package survey

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ZoneTable maps a municipality and a neighborhood to the administrative
// zone (comuna or comité) that serves it. Insertion order is kept so that
// dependent selects list neighborhoods the way the table declares them.
type ZoneTable struct {
	parents  []string
	children map[string][]string
	zones    map[string]map[string]string
}

// NewZoneTable builds a table from rows of (parent, child, zone) in order.
func NewZoneTable(rows ...[3]string) ZoneTable {
	var t ZoneTable
	for _, r := range rows {
		t.add(r[0], r[1], r[2])
	}
	return t
}

func (t *ZoneTable) add(parent, child, zone string) {
	if t.zones == nil {
		t.zones = make(map[string]map[string]string)
		t.children = make(map[string][]string)
	}
	if _, ok := t.zones[parent]; !ok {
		t.parents = append(t.parents, parent)
		t.zones[parent] = make(map[string]string)
	}
	if _, ok := t.zones[parent][child]; !ok {
		t.children[parent] = append(t.children[parent], child)
	}
	t.zones[parent][child] = zone
}

// Lookup resolves the zone for parent and child.
func (t ZoneTable) Lookup(parent, child string) (string, bool) {
	z, ok := t.zones[parent][child]
	return z, ok
}

// Parents returns the municipalities in table order.
func (t ZoneTable) Parents() []string { return t.parents }

// Children returns the neighborhoods of parent in table order.
func (t ZoneTable) Children(parent string) []string { return t.children[parent] }

func (t ZoneTable) Len() int { return len(t.parents) }

// UnmarshalYAML reads a two-level mapping while keeping key order, which a
// plain map[string]map[string]string would lose.
func (t *ZoneTable) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: zones must be a mapping", node.Line)
	}
	*t = ZoneTable{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		parent, inner := node.Content[i].Value, node.Content[i+1]
		if inner.Kind != yaml.MappingNode {
			return fmt.Errorf("line %d: zones of %q must be a mapping", inner.Line, parent)
		}
		for j := 0; j+1 < len(inner.Content); j += 2 {
			t.add(parent, inner.Content[j].Value, inner.Content[j+1].Value)
		}
	}
	return nil
}
