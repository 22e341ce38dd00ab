package manager

import (
	"time"

	"edgellm/internal/catalog"
	"edgellm/pkg/types"
)

// Overall states reported by Status.
const (
	StateIdle   = "idle"
	StateLoaded = "loaded"
	StateClosed = "closed"
)

func toModel(d catalog.Descriptor) types.Model {
	return types.Model{
		Filename:    d.Filename,
		DisplayName: d.DisplayName,
		Category:    string(d.Category),
		Perspective: string(d.Perspective),
		Priority:    d.Priority,
	}
}

// ListModels returns every catalog model with its on-disk presence and
// residency. A models dir that cannot be read marks every model absent.
func (m *Manager) ListModels() []types.Model {
	present := map[string]bool{}
	if m.modelsDir != "" {
		if names, err := m.cat.Available(m.modelsDir); err == nil {
			for _, n := range names {
				present[n] = true
			}
		} else {
			m.log.Debug().Str("models_dir", m.modelsDir).Err(err).Msg("scan models dir")
		}
	}
	cur, loaded := m.guard.Current()
	all := m.cat.All()
	out := make([]types.Model, 0, len(all))
	for _, d := range all {
		tm := toModel(d)
		tm.Present = present[d.Filename]
		tm.Resident = loaded && cur.Same(d)
		out = append(out, tm)
	}
	return out
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	closed, lastErr := m.closed, m.lastErr
	m.mu.RUnlock()

	now := time.Now()
	resp := types.StatusResponse{
		State:             StateIdle,
		QueueDepth:        m.sched.Pending(),
		ActiveGenerations: m.guard.ActiveUsers(),
		Engine:            m.engineName,
		LastError:         lastErr,
		UptimeSeconds:     int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix:    now.Unix(),
		LoadsTotal:        m.loads.Load(),
	}
	if d, ok := m.guard.Current(); ok {
		tm := toModel(d)
		tm.Present = true
		tm.Resident = true
		resp.Resident = &tm
		resp.State = StateLoaded
	}
	if closed {
		resp.State = StateClosed
	}
	return resp
}
