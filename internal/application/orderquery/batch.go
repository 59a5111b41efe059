package orderquery

import (
	"sort"
)

// DefaultBatchSize 每条IN查询最多携带的ID数
const DefaultBatchSize = 100

// chunk 按size把ID切分成多段,每段对应一条IN查询
func chunk(ids []uint, size int) [][]uint {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var chunks [][]uint
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// distinctSorted 去重并升序
func distinctSorted(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
