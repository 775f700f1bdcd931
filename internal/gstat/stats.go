package gstat

import "fmt"

// FileStats counts status entries by kind.
type FileStats struct {
	Staged    uint64
	Conflicts uint64
	Changed   uint64
	Untracked uint64
}

type statusCode [2]byte

// Unmerged XY pairs as documented in git-status(1).
var conflictCodes = map[statusCode]struct{}{
	{'D', 'D'}: {}, // both deleted
	{'A', 'U'}: {}, // added by us
	{'U', 'D'}: {}, // deleted by them
	{'U', 'A'}: {}, // added by them
	{'D', 'U'}: {}, // deleted by us
	{'A', 'A'}: {}, // both added
	{'U', 'U'}: {}, // both modified
}

// ParseStats classifies every entry line (the header excluded) by its XY
// status code. A line shorter than two bytes is an error.
func ParseStats(lines []string) (FileStats, error) {
	var stats FileStats
	for i, line := range lines {
		if len(line) < 2 {
			return FileStats{}, fmt.Errorf("%w: entry %d %q is shorter than its status code", ErrParse, i+1, line)
		}
		if line[0] == '?' {
			stats.Untracked++
			continue
		}
		code := statusCode{line[0], line[1]}
		if _, ok := conflictCodes[code]; ok {
			stats.Conflicts++
			continue
		}
		switch code[0] {
		case 'A', 'C', 'D', 'M', 'R':
			stats.Staged++
		}
		switch code[1] {
		case 'C', 'D', 'M', 'R':
			stats.Changed++
		}
	}
	return stats, nil
}
