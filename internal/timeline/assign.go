package timeline

// Assign maps each of count items to a window index so that items are
// spread evenly over a window of windowSize days. Item i lands on
// i*windowSize/count: the result is non-decreasing, starts at 0, and when
// count >= windowSize it covers every index.
func Assign(count, windowSize int) []int {
	if count <= 0 || windowSize <= 0 {
		return []int{}
	}
	out := make([]int, count)
	for i := range out {
		out[i] = i * windowSize / count
	}
	return out
}
