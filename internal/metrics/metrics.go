// Package metrics 提供 Prometheus 文本格式的监控指标
// 注册表通过依赖注入传递，不使用全局单例，便于并行测试与多实例部署
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Registry 指标注册表
type Registry struct {
	mu         sync.RWMutex
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
}

// NewRegistry 创建注册表并注册引擎默认指标
func NewRegistry() *Registry {
	r := &Registry{
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
	}

	r.NewCounter("yihuban_schedule_runs_total", "排班运行次数", []string{"status"})
	r.NewHistogram("yihuban_schedule_duration_seconds", "排班生成耗时",
		[]string{}, []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0})
	r.NewCounter("yihuban_constraint_violations_total", "约束违反次数", []string{"rule"})
	r.NewCounter("yihuban_swap_evaluations_total", "换班评估次数", []string{"verdict"})
	r.NewCounter("yihuban_solver_failures_total", "外部求解器故障次数", []string{"kind"})
	r.NewGauge("yihuban_solution_score", "当前方案约束得分", []string{"org_id"})
	r.NewGauge("yihuban_fairness_score", "当前方案公平性得分", []string{"org_id"})
	r.NewGauge("yihuban_coverage_rate", "当前方案覆盖率", []string{"org_id"})
	return r
}

// Counter 计数器
type Counter struct {
	Name   string
	Help   string
	Labels []string
	mu     sync.RWMutex
	values map[string]float64
}

// Gauge 仪表值
type Gauge struct {
	Name   string
	Help   string
	Labels []string
	mu     sync.RWMutex
	values map[string]float64
}

// Histogram 直方图
type Histogram struct {
	Name    string
	Help    string
	Labels  []string
	Buckets []float64
	mu      sync.RWMutex
	counts  map[string][]int
	sums    map[string]float64
}

// NewCounter 注册计数器
func (r *Registry) NewCounter(name, help string, labels []string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := &Counter{Name: name, Help: help, Labels: labels, values: make(map[string]float64)}
	r.counters[name] = c
	return c
}

// NewGauge 注册仪表值
func (r *Registry) NewGauge(name, help string, labels []string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := &Gauge{Name: name, Help: help, Labels: labels, values: make(map[string]float64)}
	r.gauges[name] = g
	return g
}

// NewHistogram 注册直方图
func (r *Registry) NewHistogram(name, help string, labels []string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := &Histogram{
		Name: name, Help: help, Labels: labels, Buckets: buckets,
		counts: make(map[string][]int),
		sums:   make(map[string]float64),
	}
	r.histograms[name] = h
	return h
}

// Counter 按名获取计数器
func (r *Registry) Counter(name string) *Counter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// Gauge 按名获取仪表值
func (r *Registry) Gauge(name string) *Gauge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gauges[name]
}

// Histogram 按名获取直方图
func (r *Registry) Histogram(name string) *Histogram {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.histograms[name]
}

// ObserveDuration 记录一段耗时
func (r *Registry) ObserveDuration(name string, d time.Duration, labelValues ...string) {
	if h := r.Histogram(name); h != nil {
		h.Observe(d.Seconds(), labelValues...)
	}
}

// Inc 计数加一
func (c *Counter) Inc(labelValues ...string) {
	c.Add(1, labelValues...)
}

// Add 计数累加
func (c *Counter) Add(value float64, labelValues ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[labelKey(labelValues)] += value
}

// Value 读取指定标签的计数
func (c *Counter) Value(labelValues ...string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[labelKey(labelValues)]
}

// Set 设置仪表值
func (g *Gauge) Set(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[labelKey(labelValues)] = value
}

// Value 读取仪表值
func (g *Gauge) Value(labelValues ...string) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.values[labelKey(labelValues)]
}

// Observe 记录观测值
func (h *Histogram) Observe(value float64, labelValues ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := labelKey(labelValues)
	if _, exists := h.counts[key]; !exists {
		h.counts[key] = make([]int, len(h.Buckets)+1)
	}
	for i, bucket := range h.Buckets {
		if value <= bucket {
			h.counts[key][i]++
		}
	}
	h.counts[key][len(h.Buckets)]++ // +Inf
	h.sums[key] += value
}

// Export 输出 Prometheus 文本格式
func (r *Registry) Export() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder
	for _, name := range sortedKeys(r.counters) {
		c := r.counters[name]
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s counter\n", c.Name, c.Help, c.Name)
		c.mu.RLock()
		for _, key := range sortedKeys(c.values) {
			fmt.Fprintf(&b, "%s%s %g\n", c.Name, formatLabels(c.Labels, key), c.values[key])
		}
		c.mu.RUnlock()
	}
	for _, name := range sortedKeys(r.gauges) {
		g := r.gauges[name]
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s gauge\n", g.Name, g.Help, g.Name)
		g.mu.RLock()
		for _, key := range sortedKeys(g.values) {
			fmt.Fprintf(&b, "%s%s %g\n", g.Name, formatLabels(g.Labels, key), g.values[key])
		}
		g.mu.RUnlock()
	}
	for _, name := range sortedKeys(r.histograms) {
		h := r.histograms[name]
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s histogram\n", h.Name, h.Help, h.Name)
		h.mu.RLock()
		for _, key := range sortedKeys(h.sums) {
			total := h.counts[key][len(h.Buckets)]
			fmt.Fprintf(&b, "%s_count%s %d\n", h.Name, formatLabels(h.Labels, key), total)
			fmt.Fprintf(&b, "%s_sum%s %g\n", h.Name, formatLabels(h.Labels, key), h.sums[key])
		}
		h.mu.RUnlock()
	}
	return b.String()
}

// labelKey 生成标签值键
func labelKey(values []string) string {
	return strings.Join(values, ",")
}

// formatLabels 渲染标签对
func formatLabels(names []string, key string) string {
	if key == "" || len(names) == 0 {
		return ""
	}
	values := strings.Split(key, ",")
	pairs := make([]string, 0, len(names))
	for i, name := range names {
		if i >= len(values) {
			break
		}
		pairs = append(pairs, fmt.Sprintf("%s=%q", name, values[i]))
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

// sortedKeys 返回 map 的有序键
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
