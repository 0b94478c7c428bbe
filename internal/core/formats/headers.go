package formats

import (
	"strconv"
	"strings"
)

// excelColumnName converts a 0-based index to a spreadsheet column name.
// 0 -> A, 25 -> Z, 26 -> AA, 701 -> ZZ, 702 -> AAA
func excelColumnName(index int) string {
	result := ""
	index++

	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}

	return result
}

// headerNamer hands out unique column names for one file.
type headerNamer struct {
	unnamed int
	seen    map[string]int
}

func newHeaderNamer() *headerNamer {
	return &headerNamer{seen: make(map[string]int)}
}

// name returns a unique name for a raw header cell. Blank headers become
// Unnamed_A, Unnamed_B, ...; repeats of a name get a numeric suffix.
func (n *headerNamer) name(raw string) string {
	h := strings.TrimSpace(raw)
	if h == "" {
		h = "Unnamed_" + excelColumnName(n.unnamed)
		n.unnamed++
	}

	if _, dup := n.seen[h]; !dup {
		n.seen[h] = 0
		return h
	}
	for {
		n.seen[h]++
		candidate := h + "." + strconv.Itoa(n.seen[h])
		if _, taken := n.seen[candidate]; !taken {
			n.seen[candidate] = 0
			return candidate
		}
	}
}

// NormalizeHeaders makes a header row usable as column names.
//
// Rules:
//   - Surrounding whitespace is trimmed
//   - Blank headers are named Unnamed_A, Unnamed_B, ..., Unnamed_AA, ...
//   - A repeated name gets a suffix: NAME, NAME.1, NAME.2
//
// Example:
//
//	Input:  ["CPT", "", "AGE", "CPT", " "]
//	Output: ["CPT", "Unnamed_A", "AGE", "CPT.1", "Unnamed_B"]
func NormalizeHeaders(header []string) []string {
	return newHeaderNamer().all(header)
}

func (n *headerNamer) all(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = n.name(h)
	}
	return out
}
