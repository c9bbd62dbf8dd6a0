package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfilerRecordAndAverage(t *testing.T) {
	p := NewProfiler()
	p.Record(ScopeFrame, 4*time.Millisecond)
	p.Record(ScopeFrame, 2*time.Millisecond)
	p.Record(ScopeBVHBuild, 10*time.Millisecond)

	assert.Equal(t, []string{ScopeFrame, ScopeBVHBuild}, p.Order)
	assert.Equal(t, 2*time.Millisecond, p.Last[ScopeFrame])
	assert.Equal(t, 3*time.Millisecond, p.Average(ScopeFrame))
	assert.Equal(t, time.Duration(0), p.Average("missing"))

	p.Reset()
	assert.Equal(t, []string{ScopeFrame, ScopeBVHBuild}, p.Order, "order survives reset")
	assert.Equal(t, 0, p.Calls[ScopeFrame])
}

func TestProfilerScopes(t *testing.T) {
	p := NewProfiler()
	assert.Equal(t, time.Duration(0), p.EndScope(ScopeUpload), "ending an unopened scope is a no-op")
	assert.Empty(t, p.Order)

	p.BeginScope(ScopeUpload)
	d := p.EndScope(ScopeUpload)
	assert.GreaterOrEqual(t, d, time.Duration(0))
	assert.Equal(t, 1, p.Calls[ScopeUpload])

	assert.Equal(t, time.Duration(0), p.EndScope(ScopeUpload), "a scope closes once")
}

func TestProfilerString(t *testing.T) {
	p := NewProfiler()
	p.Record(ScopeBVHBuild, 1500*time.Microsecond)
	p.SetCount("triangles", 12)
	p.SetCount("bvh nodes", 7)

	s := p.String()
	assert.Contains(t, s, "bvh build      :     1.50 ms (avg 1.50 ms over 1)")
	assert.Contains(t, s, "bvh nodes      : 7\n  triangles      : 12")
}
