package metrics

import (
	"testing"
)

// TestNewCollector tests creating a new metrics collector
func TestNewCollector(t *testing.T) {
	collector := NewCollector()
	if collector == nil {
		t.Fatal("Expected non-nil collector")
	}
}

// TestCollector_ReceiveMetrics tests the receive-path counters
func TestCollector_ReceiveMetrics(t *testing.T) {
	collector := NewCollector()

	collector.FrameReceived(11)
	collector.FrameReceived(32)
	collector.FrameValid(0x00)
	collector.CRCError()

	if got := collector.GetFramesReceived(); got != 2 {
		t.Errorf("Expected 2 frames received, got %d", got)
	}
	if got := collector.GetBytesReceived(); got != 43 {
		t.Errorf("Expected 43 bytes received, got %d", got)
	}
	if got := collector.GetValidFrames(); got != 1 {
		t.Errorf("Expected 1 valid frame, got %d", got)
	}
	if got := collector.GetCRCErrors(); got != 1 {
		t.Errorf("Expected 1 CRC error, got %d", got)
	}
}

// TestCollector_SendMetrics tests the send-path counters
func TestCollector_SendMetrics(t *testing.T) {
	collector := NewCollector()

	collector.FrameSent(11)
	collector.FrameSent(32)

	if got := collector.GetFramesSent(); got != 2 {
		t.Errorf("Expected 2 frames sent, got %d", got)
	}
	if got := collector.GetBytesSent(); got != 43 {
		t.Errorf("Expected 43 bytes sent, got %d", got)
	}
}

// TestCollector_ErrorMetrics tests error and drop counters
func TestCollector_ErrorMetrics(t *testing.T) {
	collector := NewCollector()

	collector.DecodeError()
	collector.DecodeError()
	collector.EventDropped()

	if got := collector.GetDecodeErrors(); got != 2 {
		t.Errorf("Expected 2 decode errors, got %d", got)
	}
	if got := collector.GetEventsDropped(); got != 1 {
		t.Errorf("Expected 1 dropped event, got %d", got)
	}
}

// TestCollector_TargetGauge tests the traffic table gauge
func TestCollector_TargetGauge(t *testing.T) {
	collector := NewCollector()

	collector.SetActiveTargets(5)
	if got := collector.GetActiveTargets(); got != 5 {
		t.Errorf("Expected 5 active targets, got %d", got)
	}

	collector.SetActiveTargets(0)
	if got := collector.GetActiveTargets(); got != 0 {
		t.Errorf("Expected 0 active targets, got %d", got)
	}
}

// TestCollector_Snapshot tests the JSON-facing snapshot
func TestCollector_Snapshot(t *testing.T) {
	collector := NewCollector()

	collector.FrameReceived(11)
	collector.FrameValid(0x00)
	collector.FrameValid(0x14)
	collector.FrameValid(0x14)
	collector.CRCError()
	collector.CaptureRecordWritten()
	collector.SetActiveTargets(2)

	snap := collector.Snapshot()

	if snap.FramesReceived != 1 {
		t.Errorf("Expected 1 frame received in snapshot, got %d", snap.FramesReceived)
	}
	if snap.ValidFrames != 3 {
		t.Errorf("Expected 3 valid frames in snapshot, got %d", snap.ValidFrames)
	}
	if snap.CRCErrors != 1 {
		t.Errorf("Expected 1 CRC error in snapshot, got %d", snap.CRCErrors)
	}
	if snap.CaptureRecords != 1 {
		t.Errorf("Expected 1 capture record in snapshot, got %d", snap.CaptureRecords)
	}
	if snap.ActiveTargets != 2 {
		t.Errorf("Expected 2 active targets in snapshot, got %d", snap.ActiveTargets)
	}
	if snap.MessageTypes["0x00"] != 1 {
		t.Errorf("Expected 1 heartbeat in type map, got %d", snap.MessageTypes["0x00"])
	}
	if snap.MessageTypes["0x14"] != 2 {
		t.Errorf("Expected 2 traffic reports in type map, got %d", snap.MessageTypes["0x14"])
	}
}

// TestCollector_SnapshotIsolated tests that a snapshot is a copy
func TestCollector_SnapshotIsolated(t *testing.T) {
	collector := NewCollector()
	collector.FrameValid(0x0A)

	snap := collector.Snapshot()
	snap.MessageTypes["0x0A"] = 999

	if got := collector.Snapshot().MessageTypes["0x0A"]; got != 1 {
		t.Errorf("Snapshot mutation leaked into collector: got %d", got)
	}
}

// TestCollector_Reset tests resetting gauges and the type map
func TestCollector_Reset(t *testing.T) {
	collector := NewCollector()

	collector.FrameReceived(11)
	collector.FrameValid(0x00)
	collector.SetActiveTargets(3)

	collector.Reset()

	if got := collector.GetActiveTargets(); got != 0 {
		t.Error("Expected active targets gauge to be 0 after reset")
	}
	if got := len(collector.Snapshot().MessageTypes); got != 0 {
		t.Errorf("Expected empty type map after reset, got %d entries", got)
	}
	// Cumulative counters survive a reset
	if got := collector.GetFramesReceived(); got != 1 {
		t.Errorf("Expected cumulative frame count to survive reset, got %d", got)
	}
}

// TestCollector_Concurrent tests concurrent access
func TestCollector_Concurrent(t *testing.T) {
	collector := NewCollector()

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			collector.FrameReceived(11)
			collector.FrameValid(0x14)
			collector.FrameSent(32)
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	if collector.GetFramesReceived() != 10 {
		t.Errorf("Expected 10 frames received, got %d", collector.GetFramesReceived())
	}
	if collector.GetFramesSent() != 10 {
		t.Errorf("Expected 10 frames sent, got %d", collector.GetFramesSent())
	}
	if collector.Snapshot().MessageTypes["0x14"] != 10 {
		t.Error("Expected 10 traffic reports in type map")
	}
}
