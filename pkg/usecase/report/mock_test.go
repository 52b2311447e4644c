package report_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rmts-health/rmts/pkg/adapter"
	"github.com/rmts-health/rmts/pkg/model"
	"github.com/rmts-health/rmts/pkg/repository"
)

// memoryRepo keeps documents in memory and assigns createdAt like the server does
type memoryRepo struct {
	mu        sync.Mutex
	sensors   map[model.SensorStream]*model.SensorRecord
	sensorErr map[model.SensorStream]error
	patient   *model.Patient
	reports   map[string][]*model.StoredReport
	records   []map[string]any
	clock     time.Time
	calls     int
}

var _ repository.Repository = (*memoryRepo)(nil)

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		sensors:   map[model.SensorStream]*model.SensorRecord{},
		sensorErr: map[model.SensorStream]error{},
		reports:   map[string][]*model.StoredReport{},
		clock:     time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *memoryRepo) GetLatestSensorRecord(ctx context.Context, patientID string, stream model.SensorStream) (*model.SensorRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.sensorErr[stream]; err != nil {
		return nil, err
	}
	return m.sensors[stream], nil
}

func (m *memoryRepo) GetPatient(ctx context.Context, patientID string) (*model.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.patient == nil {
		return nil, model.ErrNotFound
	}
	return m.patient, nil
}

func (m *memoryRepo) PutReport(ctx context.Context, patientID string, record map[string]any) (*model.StoredReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.records = append(m.records, record)

	m.clock = m.clock.Add(time.Second)
	data := map[string]any{"createdAt": m.clock}
	for k, v := range record {
		data[k] = v
	}
	id := model.ReportID(fmt.Sprintf("report-%d", len(m.records)))
	report := model.StoredReportFromMap(patientID, id, data)

	// newest first
	m.reports[patientID] = append([]*model.StoredReport{report}, m.reports[patientID]...)
	return report, nil
}

func (m *memoryRepo) GetReport(ctx context.Context, patientID string, id model.ReportID) (*model.StoredReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	for _, r := range m.reports[patientID] {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *memoryRepo) ListReports(ctx context.Context, patientID string) ([]*model.StoredReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return append([]*model.StoredReport{}, m.reports[patientID]...), nil
}

type storedObject struct {
	attrs adapter.ObjectAttrs
	data  []byte
}

type mockStorage struct {
	mu       sync.Mutex
	objects  map[string]*storedObject
	putErr   error
	closeErr error
	calls    int
}

func newMockStorage() *mockStorage {
	return &mockStorage{objects: map[string]*storedObject{}}
}

func (m *mockStorage) Put(ctx context.Context, key string, attrs adapter.ObjectAttrs) (io.WriteCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.putErr != nil {
		return nil, m.putErr
	}
	return &objectWriter{storage: m, key: key, attrs: attrs}, nil
}

func (m *mockStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	obj, ok := m.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *mockStorage) Bucket() string {
	return "rmts-test.appspot.com"
}

// objectWriter publishes the object only on a successful Close
type objectWriter struct {
	storage *mockStorage
	key     string
	attrs   adapter.ObjectAttrs
	buf     bytes.Buffer
}

func (w *objectWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *objectWriter) Close() error {
	w.storage.mu.Lock()
	defer w.storage.mu.Unlock()
	if w.storage.closeErr != nil {
		return w.storage.closeErr
	}
	w.storage.objects[w.key] = &storedObject{attrs: w.attrs, data: w.buf.Bytes()}
	return nil
}

type mockLLM struct {
	generateFunc func(ctx context.Context, req adapter.TextRequest) (string, error)
}

func (m *mockLLM) GenerateText(ctx context.Context, req adapter.TextRequest) (string, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return "", errors.New("not implemented")
}
