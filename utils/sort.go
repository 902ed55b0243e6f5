package utils

import "sort"

// SortIntSeq sorts s in place under cmp. Callers use it to order index
// slices by derived data without building a sort.Interface each time.
func SortIntSeq(s []int, cmp func(int, int) bool) {
	sort.Sort(intSeq{s, cmp})
}

type intSeq struct {
	s   []int
	cmp func(int, int) bool
}

func (q intSeq) Len() int           { return len(q.s) }
func (q intSeq) Swap(i, j int)      { q.s[i], q.s[j] = q.s[j], q.s[i] }
func (q intSeq) Less(i, j int) bool { return q.cmp(q.s[i], q.s[j]) }
