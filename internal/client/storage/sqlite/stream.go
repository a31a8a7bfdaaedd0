package sqlite

import (
	"context"
	"sync"
)

type topic int

const (
	topicFeatures topic = iota
	topicTileSources
	topicOfflineAreas
)

// hub fans change notifications out to stream subscribers.
// Signals are coalesced: a subscriber that has not consumed the previous signal
// gets no second one, so writers never block.
type hub struct {
	subs map[topic]map[chan struct{}]struct{}
	mu   sync.Mutex
}

func newHub() *hub {
	return &hub{subs: make(map[topic]map[chan struct{}]struct{})}
}

func (h *hub) subscribe(t topic) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.subs[t] == nil {
		h.subs[t] = make(map[chan struct{}]struct{})
	}
	h.subs[t][ch] = struct{}{}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		delete(h.subs[t], ch)
		h.mu.Unlock()
	}
	return ch, unsubscribe
}

func (h *hub) notify(t topic) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[t] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// onceAndStream delivers load's result immediately and again after every
// notification on t until ctx is done. A slow consumer only ever sees the
// latest snapshot.
func onceAndStream[T any](
	ctx context.Context,
	s *Storage,
	t topic,
	load func(ctx context.Context) ([]T, error),
) (<-chan []T, error) {
	// Подписываемся до первой загрузки, чтобы не пропустить изменение
	signal, unsubscribe := s.hub.subscribe(t)

	initial, err := load(ctx)
	if err != nil {
		unsubscribe()
		return nil, err
	}

	out := make(chan []T, 1)
	out <- initial

	go func() {
		defer close(out)
		defer unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case <-signal:
			}

			snapshot, err := load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Warn("failed to load stream snapshot", "topic", int(t), "error", err)
				continue
			}

			// Заменяем непрочитанный snapshot актуальным
			select {
			case <-out:
			default:
			}
			out <- snapshot
		}
	}()

	return out, nil
}
