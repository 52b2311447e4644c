package report

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rmts-health/rmts/pkg/model"
	"golang.org/x/sync/errgroup"
)

// fetchSnapshot reads the latest record of every sensor stream and the patient profile
// concurrently. The first failing stream aborts the whole fetch; an empty stream only
// leaves its field absent. A missing profile yields a nil patient.
func (u *UseCase) fetchSnapshot(ctx context.Context, patientID string) (*model.SensorSnapshot, *model.Patient, error) {
	records := make([]*model.SensorRecord, len(model.SensorStreams))
	var patient *model.Patient

	eg, ctx := errgroup.WithContext(ctx)
	for i, stream := range model.SensorStreams {
		eg.Go(func() error {
			rec, err := u.repo.GetLatestSensorRecord(ctx, patientID, stream)
			if err != nil {
				return goerr.Wrap(err, "failed to read sensor stream", goerr.V("stream", stream))
			}
			records[i] = rec
			return nil
		})
	}
	eg.Go(func() error {
		p, err := u.repo.GetPatient(ctx, patientID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil
			}
			return goerr.Wrap(err, "failed to read patient profile")
		}
		patient = p
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	return snapshotFromRecords(records[0], records[1], records[2], records[3]), patient, nil
}

func snapshotFromRecords(ppg, mpu, flex, fsr *model.SensorRecord) *model.SensorSnapshot {
	s := &model.SensorSnapshot{}
	if ppg != nil {
		s.HeartRateBpm = ppg.BPM
	}
	if mpu != nil {
		motion := &model.MotionSummary{
			State:   mpu.State,
			Result:  mpu.Result,
			Raised:  mpu.Raised,
			Lowered: mpu.Lowered,
		}
		if !motion.IsEmpty() {
			s.Motion = motion
		}
	}
	if flex != nil {
		s.FlexBent = flex.Bent
	}
	if fsr != nil {
		s.Pressure = fsr.Pressure
	}
	return s
}
