package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rmts-health/rmts/pkg/model"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionPatients = "patients"
	collectionReports  = "reports"

	fieldCreatedAt = "createdAt"
)

// Firestore implements Repository. FIRESTORE_EMULATOR_HOST is honoured by the client.
type Firestore struct {
	client *firestore.Client
}

var _ Repository = (*Firestore)(nil)

// New creates a new Firestore repository
func New(ctx context.Context, projectID, databaseID string, opts ...option.ClientOption) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID),
			goerr.V("database", databaseID))
	}

	return &Firestore{client: client}, nil
}

// Close releases the underlying client
func (r *Firestore) Close() error {
	return r.client.Close()
}

func (r *Firestore) patient(patientID string) *firestore.DocumentRef {
	return r.client.Collection(collectionPatients).Doc(patientID)
}

func (r *Firestore) reports(patientID string) *firestore.CollectionRef {
	return r.patient(patientID).Collection(collectionReports)
}

func (r *Firestore) GetLatestSensorRecord(ctx context.Context, patientID string, stream model.SensorStream) (*model.SensorRecord, error) {
	iter := r.patient(patientID).Collection(string(stream)).
		OrderBy(model.SensorTimestampField, firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get latest sensor record",
			goerr.V("patient_id", patientID),
			goerr.V("stream", stream))
	}

	return model.SensorRecordFromMap(doc.Data()), nil
}

func (r *Firestore) GetPatient(ctx context.Context, patientID string) (*model.Patient, error) {
	doc, err := r.patient(patientID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "patient not found", goerr.V("patient_id", patientID))
		}
		return nil, goerr.Wrap(err, "failed to get patient", goerr.V("patient_id", patientID))
	}

	return model.PatientFromMap(doc.Ref.ID, doc.Data()), nil
}

func (r *Firestore) PutReport(ctx context.Context, patientID string, record map[string]any) (*model.StoredReport, error) {
	data := make(map[string]any, len(record)+1)
	for k, v := range record {
		data[k] = v
	}
	data[fieldCreatedAt] = firestore.ServerTimestamp

	ref := r.reports(patientID).NewDoc()
	if _, err := ref.Create(ctx, data); err != nil {
		return nil, goerr.Wrap(err, "failed to create report",
			goerr.V("patient_id", patientID),
			goerr.V("report_id", ref.ID))
	}

	// Read back so the caller sees the resolved server timestamp
	doc, err := ref.Get(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read back report",
			goerr.V("patient_id", patientID),
			goerr.V("report_id", ref.ID))
	}

	return model.StoredReportFromMap(patientID, model.ReportID(doc.Ref.ID), doc.Data()), nil
}

func (r *Firestore) GetReport(ctx context.Context, patientID string, id model.ReportID) (*model.StoredReport, error) {
	doc, err := r.reports(patientID).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "report not found",
				goerr.V("patient_id", patientID),
				goerr.V("report_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get report",
			goerr.V("patient_id", patientID),
			goerr.V("report_id", id))
	}

	return model.StoredReportFromMap(patientID, id, doc.Data()), nil
}

func (r *Firestore) ListReports(ctx context.Context, patientID string) ([]*model.StoredReport, error) {
	iter := r.reports(patientID).OrderBy(fieldCreatedAt, firestore.Desc).Documents(ctx)
	defer iter.Stop()

	reports := []*model.StoredReport{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate reports", goerr.V("patient_id", patientID))
		}
		reports = append(reports, model.StoredReportFromMap(patientID, model.ReportID(doc.Ref.ID), doc.Data()))
	}

	return reports, nil
}
