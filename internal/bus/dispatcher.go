package bus

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bericyb/dislinkedIn/internal/service"
)

// Dispatcher hosts the background side of the message channel. It is an
// explicitly constructed object: whoever owns the channel listener holds a
// reference, there is no ambient singleton.
type Dispatcher struct {
	svc *service.CounterService
	log zerolog.Logger
}

func NewDispatcher(svc *service.CounterService, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{svc: svc, log: logger}
}

// Handle resolves one request. Failures that survive both the remote and
// local paths come back as a structured error response, never a panic; the
// worst outcome for the caller is a stale or zero-valued counter.
func (d *Dispatcher) Handle(ctx context.Context, req Request) Response {
	switch req.Action {
	case ActionGetDislike:
		return Response{Success: true, Count: d.svc.GetDislike(ctx, req.PostID)}

	case ActionAddDislike:
		count, err := d.svc.AddDislike(ctx, req.PostID)
		if err != nil {
			return d.failure(req, err)
		}
		return Response{Success: true, Count: count}

	case ActionRemoveDislike:
		count, err := d.svc.RemoveDislike(ctx, req.PostID)
		if err != nil {
			return d.failure(req, err)
		}
		return Response{Success: true, Count: count}

	case ActionGetAllDislikes:
		return Response{Success: true, Dislikes: d.svc.GetAllDislikes(ctx)}

	case ActionSetSupabaseConfig:
		if err := d.svc.SetBackendConfig(ctx, req.URL, req.Key); err != nil {
			return d.failure(req, err)
		}
		return Response{Success: true}

	default:
		return Response{Success: false, Error: "Unknown action"}
	}
}

// Send resolves the request on its own goroutine. Each in-flight request
// awaits its own round trip, so responses are not ordered across sends.
func (d *Dispatcher) Send(ctx context.Context, req Request) <-chan Response {
	ch := make(chan Response, 1)
	go func() {
		ch <- d.Handle(ctx, req)
	}()
	return ch
}

func (d *Dispatcher) failure(req Request, err error) Response {
	d.log.Error().
		Err(err).
		Str("action", string(req.Action)).
		Str("post_id", req.PostID).
		Msg("message handling failed")
	return Response{Success: false, Error: err.Error()}
}
