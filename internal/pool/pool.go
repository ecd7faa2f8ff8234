package pool

import (
	"sync"
	"time"

	"github.com/fystack/lottery-simulator/pkg/common/logger"
)

const DefaultCooldown = 30 * time.Second

// Pool rotates over model endpoints, skipping ones that failed recently.
type Pool struct {
	endpoints []string
	next      int
	failed    map[string]time.Time
	cooldown  time.Duration
	now       func() time.Time
	mu        sync.Mutex
}

func New(endpoints []string, cooldown time.Duration) *Pool {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Pool{
		endpoints: append([]string(nil), endpoints...),
		failed:    make(map[string]time.Time),
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Next returns the next healthy endpoint. When every endpoint is cooling
// down, failures are forgotten and the first endpoint is returned.
func (p *Pool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.endpoints) == 0 {
		return ""
	}
	for range p.endpoints {
		ep := p.endpoints[p.next]
		p.next = (p.next + 1) % len(p.endpoints)
		if at, ok := p.failed[ep]; !ok || p.now().Sub(at) > p.cooldown {
			return ep
		}
	}

	clear(p.failed)
	p.next = 1 % len(p.endpoints)
	return p.endpoints[0]
}

func (p *Pool) MarkFailed(endpoint string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[endpoint] = p.now()
	logger.Debug("Dream endpoint marked as failed", "endpoint", endpoint)
}

func (p *Pool) MarkHealthy(endpoint string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.failed[endpoint]; ok {
		delete(p.failed, endpoint)
		logger.Debug("Dream endpoint recovered", "endpoint", endpoint)
	}
}

type Stats struct {
	Total   int `json:"total"`
	Healthy int `json:"healthy"`
	Failed  int `json:"failed"`
}

// Stats counts endpoints still inside their cooldown as failed.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := Stats{Total: len(p.endpoints)}
	for _, at := range p.failed {
		if p.now().Sub(at) <= p.cooldown {
			st.Failed++
		}
	}
	st.Healthy = st.Total - st.Failed
	return st
}
