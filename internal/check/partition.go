package check

import "runtime"

// Workers returns how many workers a run over files items uses:
// min(files, parallelism). A parallelism of zero or less means
// runtime.NumCPU().
func Workers(files, parallelism int) int {
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if files < parallelism {
		return max(files, 0)
	}
	return parallelism
}

// Partition splits files into n contiguous slices of L/n files each, with
// the remainder of the floor division folded into the last slice. Slice
// i < n-1 spans [i*(L/n), (i+1)*(L/n)) and the last spans [(n-1)*(L/n), L).
// The slices share the backing array of files.
func Partition(files []string, n int) [][]string {
	l := len(files)
	if l == 0 || n <= 0 {
		return nil
	}
	if n > l {
		n = l
	}

	size := l / n
	chunks := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		start := i * size
		end := start + size
		if i == n-1 {
			end = l
		}
		chunks = append(chunks, files[start:end:end])
	}
	return chunks
}
