package statistics_test

import (
	"sync"
	"testing"
	"time"

	"github.com/pg-sharding/spqr-sequencer/pkg/statistics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRefillQuantiles(t *testing.T) {
	assert := assert.New(t)

	statistics.InitStatistics([]float64{0.5})

	statistics.RecordRefill("seq_a", 2*time.Millisecond)
	statistics.RecordRefill("seq_a", 3*time.Millisecond)
	statistics.RecordRefill("seq_a", 5*time.Millisecond)
	statistics.RecordRefill("seq_a", 7*time.Millisecond)

	assert.Equal(4.0, statistics.GetRefillQuantile("seq_a", 0.5))
	assert.Equal(0.0, statistics.GetRefillQuantile("seq_b", 0.5))

	snap := statistics.Snapshot()
	assert.Len(snap, 1)
	assert.Equal("seq_a", snap[0].Name)
	assert.Equal(uint64(4), snap[0].Refills)
	assert.Equal(4.0, snap[0].Quantiles["0.5"])
}

func TestNoStatisticsWhenNotNeeded(t *testing.T) {
	assert := assert.New(t)

	statistics.InitStatistics([]float64{})
	statistics.RecordRefill("seq_a", 2*time.Millisecond)

	assert.Equal(0.0, statistics.GetRefillQuantile("seq_a", 0.5))
	assert.Empty(statistics.Snapshot())
}

func TestStatisticsInit(t *testing.T) {
	assert := assert.New(t)

	statistics.InitStatistics([]float64{0.5})
	q := statistics.GetQuantiles()
	assert.Len(q, 1)
	assert.Equal(q[0], 0.5)

	assert.NoError(statistics.InitStatisticsStr([]string{"0.5", ".999"}))
	q = statistics.GetQuantiles()
	assert.Len(q, 2)
	assert.Equal(q[0], 0.5)
	assert.Equal(q[1], 0.999)

	assert.ErrorContains(statistics.InitStatisticsStr([]string{"erroneous_str"}), "could not parse time quantile to float")
	assert.ErrorContains(statistics.InitStatisticsStr([]string{"1.5"}), "time quantile must be in")
}

func TestPrometheusCounters(t *testing.T) {
	assert := assert.New(t)

	c := statistics.IssuedCounter("seq_prom")
	c.Add(3)
	assert.Equal(3.0, testutil.ToFloat64(statistics.IssuedCounter("seq_prom")))

	statistics.RecordConflict("seq_prom")
	statistics.RecordRetriesExhausted("seq_prom")
}

// must run with -race
func TestCheckMultithreading(t *testing.T) {
	statistics.InitStatistics([]float64{0.5, 0.99})

	var wg sync.WaitGroup
	for n := 0; n < 50; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 200; n++ {
				statistics.RecordRefill("seq_mt", time.Millisecond)
				statistics.GetRefillQuantile("seq_mt", 0.99)
				statistics.Snapshot()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1.0, statistics.GetRefillQuantile("seq_mt", 0.5))
}
