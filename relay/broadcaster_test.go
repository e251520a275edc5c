package relay

import (
	"context"
	"log/slog"
	"testing"

	"blind-relay/contract"
	"blind-relay/domain"
	"blind-relay/domain/event"
	"blind-relay/mocks"

	"github.com/mama165/sdk-go/logs"
	"go.uber.org/mock/gomock"
)

func TestBroadcaster_BroadcastPresence_ReachesEveryAttachedConnection(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	registeredSink := mocks.NewMockEventSink(ctrl)
	guestSink := mocks.NewMockEventSink(ctrl)

	snapshot := []domain.PresenceEntry{{Identity: "alice", PublicKey: "a2V5"}}

	// Given one registered party and one guest are attached
	mockRegistry.EXPECT().Snapshot().Return(snapshot).Times(1)
	mockRegistry.EXPECT().Sinks().
		Return([]contract.EventSink{registeredSink, guestSink}).Times(1)

	// Then both receive the full snapshot, guest included
	expected := event.PresenceUpdated{Parties: snapshot}
	registeredSink.EXPECT().Consume(gomock.Any(), expected).Return(nil).Times(1)
	guestSink.EXPECT().Consume(gomock.Any(), expected).Return(nil).Times(1)

	// When one mutation triggers one broadcast
	broadcaster := NewBroadcaster(log, mockRegistry)
	broadcaster.BroadcastPresence(context.Background())
}

func TestBroadcaster_BroadcastPresence_OneBroadcastPerMutation(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	mockSink := mocks.NewMockEventSink(ctrl)

	// Given three registry mutations in sequence
	mockRegistry.EXPECT().Snapshot().Return(nil).Times(3)
	mockRegistry.EXPECT().Sinks().Return([]contract.EventSink{mockSink}).Times(3)

	// Then the sink hears exactly three snapshots, no debouncing
	mockSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	broadcaster := NewBroadcaster(log, mockRegistry)
	for i := 0; i < 3; i++ {
		broadcaster.BroadcastPresence(context.Background())
	}
}

func TestBroadcaster_BroadcastPresence_OneFailingSinkDoesNotStopOthers(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	failing := mocks.NewMockEventSink(ctrl)
	healthy := mocks.NewMockEventSink(ctrl)

	mockRegistry.EXPECT().Snapshot().Return(nil).Times(1)
	mockRegistry.EXPECT().Sinks().Return([]contract.EventSink{failing, healthy}).Times(1)

	failing.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(context.Canceled).Times(1)
	healthy.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	broadcaster := NewBroadcaster(log, mockRegistry)
	broadcaster.BroadcastPresence(context.Background())
}
