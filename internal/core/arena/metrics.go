package arena

// Metrics is a snapshot of arena usage.
type Metrics struct {
	Name        string
	Used        int     // bytes handed out, including alignment padding
	Capacity    int     // bytes in the backing range
	Allocations int     // Push/PushSlice calls since the last reset
	Utilization float64 // Used / Capacity (0.0-1.0)
}

func (a *Arena) Metrics() Metrics {
	m := Metrics{
		Name:        a.name,
		Used:        a.used,
		Capacity:    len(a.base),
		Allocations: a.allocs,
	}
	if m.Capacity > 0 {
		m.Utilization = float64(m.Used) / float64(m.Capacity)
	}
	return m
}
