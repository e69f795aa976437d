package statistics

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/caio/go-tdigest"
	"github.com/pg-sharding/spqr-sequencer/pkg/models/spqrerror"
)

// refillStatistics keeps a t-digest of segment refill latency (ms) per
// sequence name. Collection is off until quantiles are configured.
type refillStatistics struct {
	mu sync.Mutex

	RefillTime        map[string]*tdigest.TDigest
	Quantiles         []float64
	NeedToCollectData bool
}

var refillStats = refillStatistics{
	RefillTime: make(map[string]*tdigest.TDigest),
}

// SequenceStatistics is a point-in-time view of one sequence's refills.
type SequenceStatistics struct {
	Name      string             `json:"name"`
	Refills   uint64             `json:"refills"`
	Quantiles map[string]float64 `json:"refill_time_ms"`
}

func InitStatistics(q []float64) {
	refillStats.mu.Lock()
	defer refillStats.mu.Unlock()

	refillStats.Quantiles = q
	refillStats.NeedToCollectData = len(q) > 0
	refillStats.RefillTime = make(map[string]*tdigest.TDigest)
}

func InitStatisticsStr(q []string) error {
	quantiles := make([]float64, 0, len(q))
	for _, s := range q {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return spqrerror.Newf(spqrerror.SPQR_UNEXPECTED, "could not parse time quantile to float: %q", s)
		}
		if f <= 0 || f > 1 {
			return spqrerror.Newf(spqrerror.SPQR_UNEXPECTED, "time quantile must be in (0, 1], got %v", f)
		}
		quantiles = append(quantiles, f)
	}
	InitStatistics(quantiles)
	return nil
}

func GetQuantiles() []float64 {
	refillStats.mu.Lock()
	defer refillStats.mu.Unlock()

	ret := make([]float64, len(refillStats.Quantiles))
	copy(ret, refillStats.Quantiles)
	return ret
}

// RecordRefill accounts one successful segment refill.
func RecordRefill(name string, d time.Duration) {
	refills.WithLabelValues(name).Inc()
	refillDuration.WithLabelValues(name).Observe(d.Seconds())

	refillStats.mu.Lock()
	defer refillStats.mu.Unlock()

	if !refillStats.NeedToCollectData {
		return
	}
	td, ok := refillStats.RefillTime[name]
	if !ok {
		td, _ = tdigest.New()
		refillStats.RefillTime[name] = td
	}
	_ = td.Add(float64(d.Microseconds()) / 1000)
}

func GetRefillQuantile(name string, q float64) float64 {
	refillStats.mu.Lock()
	defer refillStats.mu.Unlock()

	td, ok := refillStats.RefillTime[name]
	if !ok || td.Count() == 0 {
		return 0
	}
	return td.Quantile(q)
}

// Snapshot returns refill statistics of every sequence seen so far, sorted by name.
func Snapshot() []SequenceStatistics {
	refillStats.mu.Lock()
	defer refillStats.mu.Unlock()

	ret := make([]SequenceStatistics, 0, len(refillStats.RefillTime))
	for name, td := range refillStats.RefillTime {
		st := SequenceStatistics{
			Name:      name,
			Refills:   td.Count(),
			Quantiles: make(map[string]float64, len(refillStats.Quantiles)),
		}
		for _, q := range refillStats.Quantiles {
			st.Quantiles[fmt.Sprintf("%g", q)] = td.Quantile(q)
		}
		ret = append(ret, st)
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Name < ret[j].Name
	})
	return ret
}
