package vm

import "sort"

// PerformanceStatistics aggregates per-opcode execution counts over a run,
// for the debugger's hot-path report.
type PerformanceStatistics struct {
	OpcodeCounts map[byte]uint64
	TotalCycles  uint64
}

// NewPerformanceStatistics creates an empty statistics collector.
func NewPerformanceStatistics() *PerformanceStatistics {
	return &PerformanceStatistics{OpcodeCounts: make(map[byte]uint64)}
}

func (s *PerformanceStatistics) record(opcode byte) {
	s.OpcodeCounts[opcode]++
	s.TotalCycles++
}

// HotPathEntry is one row of a sorted hot-path report.
type HotPathEntry struct {
	Opcode byte
	Count  uint64
}

// HotPath returns opcodes ordered by descending execution count.
func (s *PerformanceStatistics) HotPath() []HotPathEntry {
	entries := make([]HotPathEntry, 0, len(s.OpcodeCounts))
	for op, n := range s.OpcodeCounts {
		entries = append(entries, HotPathEntry{Opcode: op, Count: n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Opcode < entries[j].Opcode
	})
	return entries
}
