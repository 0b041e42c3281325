package stacktrace

import "strings"

// InternalPaths reduces a debug.Stack dump to the "internal/...go:line" frames of this module.
func InternalPaths(stack []byte) []string {
	var paths []string

	for line := range strings.SplitSeq(string(stack), "\n") {
		line = strings.TrimSpace(line)

		start := strings.Index(line, "/internal/")
		if start == -1 {
			continue
		}

		ext := strings.Index(line, ".go:")
		if ext == -1 || ext < start {
			continue
		}

		end := len(line)
		if sp := strings.IndexByte(line[ext:], ' '); sp != -1 {
			end = ext + sp
		}

		paths = append(paths, line[start+1:end])
	}

	return paths
}
