// SPDX-License-Identifier: AGPL-3.0-or-later
// voiced - a group-voice control-plane server
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// Package broadcast implements the template-then-personalise notification
// engine: a change is encoded once with its per-recipient header fields
// left zero, published to every instance over internal/pubsub, and each
// instance's relay loop stamps in every locally-connected player's
// private_id, public_id, and next f0_s_counter before handing the result
// to internal/reliability for send-with-retry.
//
// This mirrors the teacher's hub package: marshalAndPublish encodes once
// and publishes a RawDMRPacket envelope; subscribeRepeater/subscribeTG
// unmarshal it on the receiving side and re-deliver locally. Here the
// envelope is models.RawPacket and the re-delivery step personalises a
// shared template instead of forwarding verbatim.
package broadcast

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/soliloque-go/voiced/internal/metrics"
	"github.com/soliloque-go/voiced/internal/pubsub"
	"github.com/soliloque-go/voiced/internal/reliability"
	"github.com/soliloque-go/voiced/internal/store/models"
	"github.com/soliloque-go/voiced/internal/wire"
	"github.com/soliloque-go/voiced/internal/world"
)

// tracerName matches internal/voiceserver's, since a broadcast span is
// very often the child of a handler span that triggered the publish.
const tracerName = "voiced"

// Topic is the pubsub topic every instance publishes change notifications
// to and subscribes on for relay. One control-plane server process owns
// one world.Server, so a single fixed topic is sufficient; a deployment
// running several servers would need one Topic per world.Server.
const Topic = "voiced:broadcast"

// Engine publishes template frames and relays them to locally-connected
// players. Construct with NewEngine and start the relay loop with Run.
type Engine struct {
	ps     pubsub.PubSub
	world  *world.Server
	rel    *reliability.Manager
	m      *metrics.Metrics
	logger *slog.Logger
}

// NewEngine builds a broadcast Engine. m and logger may be nil; a nil
// logger falls back to slog.Default().
func NewEngine(ps pubsub.PubSub, w *world.Server, rel *reliability.Manager, m *metrics.Metrics, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{ps: ps, world: w, rel: rel, m: m, logger: logger}
}

// Publish encodes template (whose PrivateID/PublicID/Counter fields are
// expected to be zero — the per-recipient personalise step fills them in
// on the other end) and publishes it once for every instance's relay loop
// to pick up.
func (e *Engine) Publish(template *wire.Frame) error {
	_, span := otel.Tracer(tracerName).Start(context.Background(), "broadcast.Publish")
	defer span.End()

	raw := models.RawPacket{Data: template.Encode()}
	packed, err := raw.MarshalMsg(nil)
	if err != nil {
		return fmt.Errorf("broadcast: marshaling envelope: %w", err)
	}
	if err := e.ps.Publish(Topic, packed); err != nil {
		return fmt.Errorf("broadcast: publishing: %w", err)
	}
	return nil
}

// Run subscribes to Topic and relays every received template to this
// instance's connected players until ctx is cancelled. Call it once, in
// its own goroutine, during server startup.
func (e *Engine) Run(ctx context.Context) {
	sub := e.ps.Subscribe(Topic)
	defer func() {
		if err := sub.Close(); err != nil {
			e.logger.Warn("broadcast: closing subscription", "error", err)
		}
	}()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			if msg == nil {
				return
			}
			e.relay(msg)
		}
	}
}
