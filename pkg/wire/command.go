// Package wire encodes the per-tick velocity command frame published
// to the robot bridge as a FlatBuffers table. The table is built by
// slot with the raw builder API; the field layout below is the schema.
package wire

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/MahiRanka/dimos-unitree/pkg/teleop"
)

// CommandFrame is one published control frame: the command itself plus
// the metadata the bridge and any recorder need to interpret it.
type CommandFrame struct {
	Command     teleop.VelocityCommand
	TimestampNs int64
	Source      string // manual | scripted | step
	Label       string
}

// Table field slots. VTable offset for slot n is 4 + 2n.
const (
	slotLinVelX     = 0
	slotLinVelY     = 1
	slotAngVel      = 2
	slotTimestampNs = 3
	slotSource      = 4
	slotLabel       = 5
	numSlots        = 6
)

func vtableOffset(slot flatbuffers.VOffsetT) flatbuffers.VOffsetT {
	return 4 + 2*slot
}

// EncodeCommandFrame serializes a frame into FlatBuffers wire format.
func EncodeCommandFrame(frame CommandFrame) []byte {
	builder := flatbuffers.NewBuilder(128)

	// Strings must be created before the table is started.
	sourceOffset := builder.CreateString(frame.Source)
	labelOffset := builder.CreateString(frame.Label)

	builder.StartObject(numSlots)
	builder.PrependFloat64Slot(slotLinVelX, frame.Command.LinVelX, 0)
	builder.PrependFloat64Slot(slotLinVelY, frame.Command.LinVelY, 0)
	builder.PrependFloat64Slot(slotAngVel, frame.Command.AngVel, 0)
	builder.PrependInt64Slot(slotTimestampNs, frame.TimestampNs, 0)
	builder.PrependUOffsetTSlot(slotSource, sourceOffset, 0)
	builder.PrependUOffsetTSlot(slotLabel, labelOffset, 0)
	frameOffset := builder.EndObject()

	builder.Finish(frameOffset)
	return builder.FinishedBytes()
}

// DecodeCommandFrame parses a frame from FlatBuffers wire format.
func DecodeCommandFrame(data []byte) (CommandFrame, error) {
	if len(data) < flatbuffers.SizeUOffsetT {
		return CommandFrame{}, fmt.Errorf("command frame too short: %d bytes", len(data))
	}

	tab := flatbuffers.Table{
		Bytes: data,
		Pos:   flatbuffers.GetUOffsetT(data),
	}

	var frame CommandFrame
	if o := flatbuffers.UOffsetT(tab.Offset(vtableOffset(slotLinVelX))); o != 0 {
		frame.Command.LinVelX = tab.GetFloat64(o + tab.Pos)
	}
	if o := flatbuffers.UOffsetT(tab.Offset(vtableOffset(slotLinVelY))); o != 0 {
		frame.Command.LinVelY = tab.GetFloat64(o + tab.Pos)
	}
	if o := flatbuffers.UOffsetT(tab.Offset(vtableOffset(slotAngVel))); o != 0 {
		frame.Command.AngVel = tab.GetFloat64(o + tab.Pos)
	}
	if o := flatbuffers.UOffsetT(tab.Offset(vtableOffset(slotTimestampNs))); o != 0 {
		frame.TimestampNs = tab.GetInt64(o + tab.Pos)
	}
	if o := flatbuffers.UOffsetT(tab.Offset(vtableOffset(slotSource))); o != 0 {
		frame.Source = string(tab.ByteVector(o + tab.Pos))
	}
	if o := flatbuffers.UOffsetT(tab.Offset(vtableOffset(slotLabel))); o != 0 {
		frame.Label = string(tab.ByteVector(o + tab.Pos))
	}

	return frame, nil
}
