// Package probe опрашивает зависимости сервиса для проверок здоровья.
package probe

import (
	"context"
	"sort"
	"time"
)

const (
	StatusOK   = "ok"
	StatusDown = "down"
)

// Pinger зависимость, которую можно проверить.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Probe набор именованных зависимостей.
type Probe struct {
	timeout time.Duration
	names   []string
	pingers map[string]Pinger
}

// New создает новый экземпляр Probe с таймаутом на одну проверку.
func New(timeout time.Duration) *Probe {
	return &Probe{timeout: timeout, pingers: make(map[string]Pinger)}
}

// Add регистрирует зависимость под именем name.
func (p *Probe) Add(name string, pinger Pinger) *Probe {
	if _, ok := p.pingers[name]; !ok {
		p.names = append(p.names, name)
		sort.Strings(p.names)
	}
	p.pingers[name] = pinger
	return p
}

// Check пингует все зависимости и возвращает их статусы и общий итог.
func (p *Probe) Check(ctx context.Context) (map[string]string, bool) {
	statuses := make(map[string]string, len(p.names))
	healthy := true
	for _, name := range p.names {
		pctx, cancel := context.WithTimeout(ctx, p.timeout)
		err := p.pingers[name].Ping(pctx)
		cancel()
		if err != nil {
			statuses[name] = StatusDown
			healthy = false
			continue
		}
		statuses[name] = StatusOK
	}
	return statuses, healthy
}

// Func адаптер функции к Pinger.
type Func func(ctx context.Context) error

// Ping вызывает f.
func (f Func) Ping(ctx context.Context) error {
	return f(ctx)
}
