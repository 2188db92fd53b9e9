package metrics

import (
	"sort"
	"sync"
	"time"
)

const responseTimeWindow = 1000

type Metrics struct {
	mutex         sync.RWMutex
	groupRequests map[string]int64
	selections    map[string]map[string]int64
	responseTimes map[string][]time.Duration
	statusCodes   map[string]map[int]int64
	startTime     time.Time
}

type Snapshot struct {
	TotalRequests int64                    `json:"total_requests"`
	Uptime        time.Duration            `json:"uptime"`
	Algorithm     string                   `json:"algorithm"`
	Groups        map[string]GroupMetrics  `json:"groups"`
	Targets       map[string]TargetMetrics `json:"targets"`
}

type GroupMetrics struct {
	Requests   int64            `json:"requests"`
	Selections map[string]int64 `json:"selections"`
}

type TargetMetrics struct {
	AvgResponse time.Duration `json:"avg_response"`
	P50Response time.Duration `json:"p50_response"`
	P95Response time.Duration `json:"p95_response"`
	P99Response time.Duration `json:"p99_response"`
	StatusCodes map[int]int64 `json:"status_codes"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		groupRequests: make(map[string]int64),
		selections:    make(map[string]map[string]int64),
		responseTimes: make(map[string][]time.Duration),
		statusCodes:   make(map[string]map[int]int64),
		startTime:     time.Now(),
	}
}

func (m *Metrics) IncrementRequests(group string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.groupRequests[group]++
}

func (m *Metrics) RecordSelection(group, target string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.selections[group] == nil {
		m.selections[group] = make(map[string]int64)
	}
	m.selections[group][target]++
}

func (m *Metrics) RecordResponse(target string, duration time.Duration, statusCode int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.responseTimes[target] = append(m.responseTimes[target], duration)

	if len(m.responseTimes[target]) > responseTimeWindow {
		m.responseTimes[target] = m.responseTimes[target][1:]
	}

	if m.statusCodes[target] == nil {
		m.statusCodes[target] = make(map[int]int64)
	}
	m.statusCodes[target][statusCode]++
}

func (m *Metrics) Snapshot(algorithm string) Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime:    time.Since(m.startTime),
		Algorithm: algorithm,
		Groups:    make(map[string]GroupMetrics),
		Targets:   make(map[string]TargetMetrics),
	}

	allGroups := make(map[string]bool)
	for group := range m.groupRequests {
		allGroups[group] = true
	}
	for group := range m.selections {
		allGroups[group] = true
	}

	for group := range allGroups {
		snap.TotalRequests += m.groupRequests[group]

		gm := GroupMetrics{
			Requests:   m.groupRequests[group],
			Selections: make(map[string]int64),
		}
		for target, count := range m.selections[group] {
			gm.Selections[target] = count
		}

		snap.Groups[group] = gm
	}

	allTargets := make(map[string]bool)
	for target := range m.responseTimes {
		allTargets[target] = true
	}
	for target := range m.statusCodes {
		allTargets[target] = true
	}

	for target := range allTargets {
		tm := TargetMetrics{
			StatusCodes: m.statusCodes[target],
		}

		durations := m.responseTimes[target]
		if len(durations) > 0 {
			sorted := make([]time.Duration, len(durations))
			copy(sorted, durations)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			tm.AvgResponse = average(sorted)
			tm.P50Response = percentile(sorted, 0.50)
			tm.P95Response = percentile(sorted, 0.95)
			tm.P99Response = percentile(sorted, 0.99)
		}

		snap.Targets[target] = tm
	}

	return snap
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
