package model

import (
	"encoding/json"
	"time"
)

// SensorStream is the name of a per-patient sensor sub-collection
type SensorStream string

const (
	SensorStreamPPG  SensorStream = "ppg_data"
	SensorStreamMPU  SensorStream = "mpu_data"
	SensorStreamFlex SensorStream = "flex_data"
	SensorStreamFSR  SensorStream = "fsr_data"
)

// SensorStreams lists every stream read for a report, in table order
var SensorStreams = []SensorStream{
	SensorStreamPPG,
	SensorStreamMPU,
	SensorStreamFlex,
	SensorStreamFSR,
}

// SensorTimestampField is the ingestion timestamp every stream document carries
const SensorTimestampField = "timestamp"

// SensorRecord is the typed projection of a single stream document. Only the fields
// consumed by reports are kept; every field may be missing.
type SensorRecord struct {
	BPM       *Reading
	State     *Reading
	Result    *Reading
	Raised    *Reading
	Lowered   *Reading
	Bent      *Reading
	Pressure  *Reading
	Timestamp *time.Time
}

// SensorRecordFromMap builds a SensorRecord from raw document data
func SensorRecordFromMap(data map[string]any) *SensorRecord {
	if data == nil {
		return nil
	}

	rec := &SensorRecord{
		BPM:      ReadingFrom(data["bpm"]),
		State:    ReadingFrom(data["state"]),
		Result:   ReadingFrom(data["result"]),
		Raised:   ReadingFrom(data["raised"]),
		Lowered:  ReadingFrom(data["lowered"]),
		Bent:     ReadingFrom(data["bent"]),
		Pressure: ReadingFrom(data["pressure"]),
	}
	if ts, ok := data[SensorTimestampField].(time.Time); ok {
		rec.Timestamp = &ts
	}
	return rec
}

// MotionSummary is the compacted motion (MPU) reading
type MotionSummary struct {
	State   *Reading `json:"state,omitempty"`
	Result  *Reading `json:"result,omitempty"`
	Raised  *Reading `json:"raised,omitempty"`
	Lowered *Reading `json:"lowered,omitempty"`
}

// IsEmpty reports whether no sub-field is populated
func (m *MotionSummary) IsEmpty() bool {
	return m == nil || (m.State == nil && m.Result == nil && m.Raised == nil && m.Lowered == nil)
}

// Fields returns populated sub-fields in a fixed order
func (m *MotionSummary) Fields() []MotionField {
	if m == nil {
		return nil
	}
	var fields []MotionField
	for _, f := range []MotionField{
		{Name: "state", Value: m.State},
		{Name: "result", Value: m.Result},
		{Name: "raised", Value: m.Raised},
		{Name: "lowered", Value: m.Lowered},
	} {
		if f.Value != nil {
			fields = append(fields, f)
		}
	}
	return fields
}

// MotionField is a named, populated MotionSummary entry
type MotionField struct {
	Name  string
	Value *Reading
}

// SensorSnapshot is the latest known reading of each stream for one patient. A nil
// field means the stream had no record (or the record lacked the field).
type SensorSnapshot struct {
	HeartRateBpm *Reading       `json:"heartRateBpm,omitempty"`
	Motion       *MotionSummary `json:"motionSummary,omitempty"`
	FlexBent     *Reading       `json:"flexBent,omitempty"`
	Pressure     *Reading       `json:"pressure,omitempty"`
}

// Map converts the snapshot into document data. Absent values are kept as nil and are
// expected to be removed by sanitization before the write.
func (s *SensorSnapshot) Map() map[string]any {
	if s == nil {
		return nil
	}

	var motion any
	if !s.Motion.IsEmpty() {
		motion = map[string]any{
			"state":   s.Motion.State.Value(),
			"result":  s.Motion.Result.Value(),
			"raised":  s.Motion.Raised.Value(),
			"lowered": s.Motion.Lowered.Value(),
		}
	}

	return map[string]any{
		"heartRateBpm":  s.HeartRateBpm.Value(),
		"motionSummary": motion,
		"flexBent":      s.FlexBent.Value(),
		"pressure":      s.Pressure.Value(),
	}
}

// SnapshotFromMap parses a persisted summary
func SnapshotFromMap(data map[string]any) SensorSnapshot {
	snapshot := SensorSnapshot{
		HeartRateBpm: ReadingFrom(data["heartRateBpm"]),
		FlexBent:     ReadingFrom(data["flexBent"]),
		Pressure:     ReadingFrom(data["pressure"]),
	}
	if m, ok := data["motionSummary"].(map[string]any); ok {
		motion := &MotionSummary{
			State:   ReadingFrom(m["state"]),
			Result:  ReadingFrom(m["result"]),
			Raised:  ReadingFrom(m["raised"]),
			Lowered: ReadingFrom(m["lowered"]),
		}
		if !motion.IsEmpty() {
			snapshot.Motion = motion
		}
	}
	return snapshot
}

// CompactMotion returns the motion summary as JSON containing only populated
// sub-fields. ok is false when nothing is populated.
func (s *SensorSnapshot) CompactMotion() (string, bool) {
	if s == nil || s.Motion.IsEmpty() {
		return "", false
	}
	data, err := json.Marshal(s.Motion)
	if err != nil {
		return "", false
	}
	return string(data), true
}
