package utils

import (
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	{ // Bucket sizes balance to within one item
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				maxK := pm.GetBucketDimension(np)
				histo[maxK]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		assert.Equal(t, 287, getTotal(getHisto(287, 32)))
		for n := 64; n < 10000; n++ {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 32)
			for key := range histo {
				keys[keyNum] = float64(key)
				keyNum++
			}
			if keyNum == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1])) // Maximum imbalance of 1
			}
			assert.Equal(t, n, getTotal(histo))
		}
	}
	{ // Inverted bucket probe - find bucket that contains index
		for maxIndex := 10; maxIndex < 1000; maxIndex++ {
			pm := NewPartitionMap(5, maxIndex)
			for k := 0; k < maxIndex; k++ {
				bn, min, max := pm.GetBucket(k)
				mmin, mmax := pm.GetBucketRange(bn)
				assert.True(t, k >= min && k < max && min == mmin && max == mmax)
			}
		}
	}
}

func TestBarrier(t *testing.T) {
	{ // All workers must arrive before any proceeds, over repeated phases
		var (
			NP      = 4
			b       = NewBarrier(NP)
			counter int64
		)
		RunWorkers(NP, func(tid int) {
			for phase := 0; phase < 10; phase++ {
				atomic.AddInt64(&counter, 1)
				b.Wait()
				assert.Equal(t, int64(0), atomic.LoadInt64(&counter)%int64(NP))
				b.Wait()
			}
		})
		assert.Equal(t, int64(10*NP), counter)
	}
}

func TestExScanThreads(t *testing.T) {
	{ // Exclusive offsets from per-thread counts, shifted by the base
		var (
			NP     = 4
			counts = []int{3, 0, 5, 2}
			idx    = make([]int, NP)
			b      = NewBarrier(NP)
		)
		RunWorkers(NP, func(tid int) {
			ExScanThreads(tid, 100, counts, idx, b)
		})
		assert.Equal(t, []int{100, 103, 103, 108}, idx)
	}
	{ // Single worker
		var (
			counts = []int{7}
			idx    = make([]int, 1)
			b      = NewBarrier(1)
		)
		RunWorkers(1, func(tid int) {
			ExScanThreads(tid, 10, counts, idx, b)
		})
		assert.Equal(t, []int{10}, idx)
	}
	{ // Non power of two worker count
		var (
			NP     = 3
			counts = []int{1, 2, 3}
			idx    = make([]int, NP)
			b      = NewBarrier(NP)
		)
		RunWorkers(NP, func(tid int) {
			ExScanThreads(tid, 0, counts, idx, b)
		})
		assert.Equal(t, []int{0, 1, 3}, idx)
	}
}

func TestMailBox(t *testing.T) {
	{ // Every worker posts its tid to every other worker
		var (
			NP = 4
			mb = NewMailBox[int](NP)
			b  = NewBarrier(NP)
		)
		RunWorkers(NP, func(tid int) {
			for dst := 0; dst < NP; dst++ {
				if dst != tid {
					mb.PostMessage(tid, dst, tid)
				}
			}
			b.Wait()
			mb.DeliverMyMessages(tid)
			b.Wait()
			mb.ReceiveMyMessages(tid)
			var (
				got  = mb.ReceiveMsgQs[tid].Cells()
				seen = make(map[int]bool)
			)
			assert.Equal(t, NP-1, len(got))
			for _, msg := range got {
				seen[msg] = true
			}
			assert.False(t, seen[tid])
			mb.ClearMyMessages(tid)
		})
	}
}
