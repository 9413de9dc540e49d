package merger

import "github.com/coasterranker/coastermap/pkg/coasters"

// group is every fetched record sharing one external id, in fetch order.
type group struct {
	externalID string
	records    []*coasters.Record
}

// isSplit reports whether the group is a multi-track attraction.
func (g *group) isSplit() bool {
	return len(g.records) > 1
}

// grouping is the outcome of partitioning a fetched batch.
type grouping struct {
	groups   []*group
	filtered int
	unkeyed  int
}

// groupRecords drops excluded records, then partitions the rest by external
// id. Groups are returned in order of first appearance.
func groupRecords(records []*coasters.Record, f *filter) grouping {
	var result grouping
	index := make(map[string]*group)

	for _, record := range records {
		if record == nil {
			result.unkeyed++
			continue
		}
		if f.excluded(record) {
			result.filtered++
			continue
		}
		externalID := record.ExternalID()
		if externalID == "" {
			result.unkeyed++
			continue
		}
		g, ok := index[externalID]
		if !ok {
			g = &group{externalID: externalID}
			index[externalID] = g
			result.groups = append(result.groups, g)
		}
		g.records = append(g.records, record)
	}
	return result
}
