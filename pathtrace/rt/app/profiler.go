package app

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Profiler keeps CPU timings per named scope plus plain counters.
type Profiler struct {
	Last   map[string]time.Duration
	Total  map[string]time.Duration
	Calls  map[string]int
	Counts map[string]int
	Order  []string

	starts map[string]time.Time
}

func NewProfiler() *Profiler {
	return &Profiler{
		Last:   make(map[string]time.Duration),
		Total:  make(map[string]time.Duration),
		Calls:  make(map[string]int),
		Counts: make(map[string]int),
		starts: make(map[string]time.Time),
	}
}

func (p *Profiler) BeginScope(name string) {
	p.starts[name] = time.Now()
}

// EndScope records the time since the matching BeginScope. Unopened scopes are ignored.
func (p *Profiler) EndScope(name string) time.Duration {
	start, ok := p.starts[name]
	if !ok {
		return 0
	}
	delete(p.starts, name)
	d := time.Since(start)
	p.Record(name, d)
	return d
}

// Record adds a measurement taken elsewhere.
func (p *Profiler) Record(name string, d time.Duration) {
	if !slices.Contains(p.Order, name) {
		p.Order = append(p.Order, name)
	}
	p.Last[name] = d
	p.Total[name] += d
	p.Calls[name]++
}

func (p *Profiler) Average(name string) time.Duration {
	n := p.Calls[name]
	if n == 0 {
		return 0
	}
	return p.Total[name] / time.Duration(n)
}

func (p *Profiler) SetCount(name string, count int) {
	p.Counts[name] = count
}

// Reset clears timings but keeps scope order and counters.
func (p *Profiler) Reset() {
	clear(p.Last)
	clear(p.Total)
	clear(p.Calls)
}

func (p *Profiler) String() string {
	var sb strings.Builder

	sb.WriteString("Timings (CPU):\n")
	for _, name := range p.Order {
		fmt.Fprintf(&sb, "  %-15s: %8.2f ms (avg %.2f ms over %d)\n",
			name, ms(p.Last[name]), ms(p.Average(name)), p.Calls[name])
	}

	sb.WriteString("\nStats:\n")
	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-15s: %d\n", k, p.Counts[k])
	}

	return sb.String()
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
